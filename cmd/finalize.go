package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/internal/pipeline"
)

var (
	finalizeRoom       string
	finalizeUser       string
	finalizeCategory   string
	finalizeCandidates []string
	finalizeAnswers    string
)

var finalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Record a member's finalized selection for a category",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cat, err := model.ParseCategory(finalizeCategory)
		if err != nil {
			return err
		}
		answers, err := loadAnswers(finalizeAnswers)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, "store")
		if err != nil {
			return err
		}
		defer env.Close()

		sel, err := env.Pipeline.FinalizeSelection(ctx, pipeline.FinalizeRequest{
			RoomID:       finalizeRoom,
			UserID:       finalizeUser,
			Category:     cat,
			CandidateIDs: finalizeCandidates,
			Answers:      answers,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "finalized %d %s candidates for %s\n", len(sel.SelectedCandidates), cat, sel.UserID)
		return nil
	},
}

func init() {
	finalizeCmd.Flags().StringVar(&finalizeRoom, "room", "", "room id")
	finalizeCmd.Flags().StringVar(&finalizeUser, "user", "", "member id")
	finalizeCmd.Flags().StringVar(&finalizeCategory, "category", "", "candidate category")
	finalizeCmd.Flags().StringSliceVar(&finalizeCandidates, "candidates", nil, "selected candidate ids")
	finalizeCmd.Flags().StringVar(&finalizeAnswers, "answers", "", "path to the member's answers file")
	for _, f := range []string{"room", "user", "category"} {
		_ = finalizeCmd.MarkFlagRequired(f)
	}
	rootCmd.AddCommand(finalizeCmd)
}
