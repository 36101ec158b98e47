package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/trip-planner/internal/model"
)

var (
	consolidateRoom     string
	consolidateCategory string
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Merge finalized member selections into a group plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cat, err := model.ParseCategory(consolidateCategory)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, "store")
		if err != nil {
			return err
		}
		defer env.Close()

		out, err := env.Pipeline.Consolidate(ctx, consolidateRoom, cat)
		if err != nil {
			return err
		}
		if out.Waiting {
			fmt.Fprintf(cmd.OutOrStdout(), "waiting for members: %d of %d finalized %s\n", out.Completed, out.Required, cat)
			return nil
		}
		return printJSON(cmd.OutOrStdout(), out.Plan)
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the last consolidated plan for a category",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cat, err := model.ParseCategory(consolidateCategory)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, "store")
		if err != nil {
			return err
		}
		defer env.Close()

		plan, err := env.Pipeline.Plan(ctx, consolidateRoom, cat)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), plan)
	},
}

func init() {
	for _, c := range []*cobra.Command{consolidateCmd, planCmd} {
		c.Flags().StringVar(&consolidateRoom, "room", "", "room id")
		c.Flags().StringVar(&consolidateCategory, "category", "", "candidate category")
		_ = c.MarkFlagRequired("room")
		_ = c.MarkFlagRequired("category")
		rootCmd.AddCommand(c)
	}
}
