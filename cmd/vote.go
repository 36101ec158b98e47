package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/trip-planner/internal/model"
)

var (
	voteRoom      string
	voteCategory  string
	voteUser      string
	voteCandidate string
	voteType      string
)

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Cast or replace a member's vote on a candidate",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cat, err := model.ParseCategory(voteCategory)
		if err != nil {
			return err
		}
		vt, err := model.ParseVoteType(voteType)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, "store")
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Pipeline.CastVote(ctx, voteRoom, cat, model.Vote{
			CandidateID: voteCandidate,
			UserID:      voteUser,
			Type:        vt,
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "recorded %s vote by %s on %s\n", vt, voteUser, voteCandidate)
		return nil
	},
}

func init() {
	voteCmd.Flags().StringVar(&voteRoom, "room", "", "room id")
	voteCmd.Flags().StringVar(&voteCategory, "category", "", "candidate category")
	voteCmd.Flags().StringVar(&voteUser, "user", "", "voting member id")
	voteCmd.Flags().StringVar(&voteCandidate, "candidate", "", "candidate id")
	voteCmd.Flags().StringVar(&voteType, "type", "up", "vote type: up, down or neutral")
	for _, f := range []string{"room", "category", "user", "candidate"} {
		_ = voteCmd.MarkFlagRequired(f)
	}
	rootCmd.AddCommand(voteCmd)
}
