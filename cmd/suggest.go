package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/internal/pipeline"
)

var (
	suggestRoom        string
	suggestCategories  []string
	suggestDestination string
	suggestAnswers     string
	suggestLimit       int
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Generate and rank candidates for one or more categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		answers, err := loadAnswers(suggestAnswers)
		if err != nil {
			return err
		}

		limit := suggestLimit
		if limit == 0 {
			limit = cfg.Source.Limit
		}

		reqs := make([]pipeline.SuggestRequest, 0, len(suggestCategories))
		for _, raw := range suggestCategories {
			cat, err := model.ParseCategory(raw)
			if err != nil {
				return err
			}
			reqs = append(reqs, pipeline.SuggestRequest{
				RoomID:      suggestRoom,
				Category:    cat,
				Destination: suggestDestination,
				Answers:     answers,
				Limit:       limit,
			})
		}

		env, err := initEnv(ctx, "suggest")
		if err != nil {
			return err
		}
		defer env.Close()

		results, err := env.Pipeline.SuggestAll(ctx, reqs)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), results)
	},
}

func init() {
	suggestCmd.Flags().StringVar(&suggestRoom, "room", "", "room id to store candidates under (optional)")
	suggestCmd.Flags().StringSliceVar(&suggestCategories, "category", []string{"stay"}, "categories: stay, transport, dining, activity")
	suggestCmd.Flags().StringVar(&suggestDestination, "destination", "", "trip destination")
	suggestCmd.Flags().StringVar(&suggestAnswers, "answers", "", "path to a YAML or JSON answers file")
	suggestCmd.Flags().IntVar(&suggestLimit, "limit", 0, "max candidates per category (default from config)")
	_ = suggestCmd.MarkFlagRequired("destination")
	rootCmd.AddCommand(suggestCmd)
}
