package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/trip-planner/internal/model"
)

var (
	consensusRoom      string
	consensusCategory  string
	consensusGroupSize int
)

var consensusCmd = &cobra.Command{
	Use:   "consensus",
	Short: "Show the vote tally and top-K candidates for a category",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cat, err := model.ParseCategory(consensusCategory)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, "store")
		if err != nil {
			return err
		}
		defer env.Close()

		view, err := env.Pipeline.Consensus(ctx, consensusRoom, cat, consensusGroupSize)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), view)
	},
}

func init() {
	consensusCmd.Flags().StringVar(&consensusRoom, "room", "", "room id")
	consensusCmd.Flags().StringVar(&consensusCategory, "category", "", "candidate category")
	consensusCmd.Flags().IntVar(&consensusGroupSize, "group-size", 0, "group size for top-K (default: distinct voters)")
	_ = consensusCmd.MarkFlagRequired("room")
	_ = consensusCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(consensusCmd)
}
