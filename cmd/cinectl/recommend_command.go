package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type recommendationView struct {
	Movie struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	} `json:"movie"`
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

func newRecommendCommand(server *string) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "recommend <user-id>",
		Short: "Fetch personalized recommendations for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(*server)

			path := fmt.Sprintf("/api/users/%s/recommendations?count=%d", args[0], count)
			var recommendations []recommendationView
			if err := client.get(cmd.Context(), path, &recommendations); err != nil {
				return err
			}
			if len(recommendations) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recommendations")
				return nil
			}

			for i, rec := range recommendations {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s (score %.1f)\n   %s\n",
					i+1, rec.Movie.Title, rec.Score, rec.Reasoning)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 10, "Number of recommendations to request")
	return cmd
}
