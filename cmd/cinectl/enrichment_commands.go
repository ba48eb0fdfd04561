package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type enrichedMovieView struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Enrichment *struct {
		AwardPotential         string   `json:"awardPotential"`
		PopularityQualityIndex int      `json:"popularityQualityIndex"`
		EmotionalGenres        string   `json:"emotionalGenres"`
		RollingROI             *float64 `json:"rollingRoi"`
		EffectivenessScore     float64  `json:"effectivenessScore"`
	} `json:"enrichment"`
}

func newEnrichmentsCommand(server *string) *cobra.Command {
	return &cobra.Command{
		Use:   "enrichments",
		Short: "List enriched movies with their computed attributes",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(*server)

			var enriched []enrichedMovieView
			if err := client.get(cmd.Context(), "/api/enrichment", &enriched); err != nil {
				return err
			}
			if len(enriched) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No enriched movies")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tAWARD\tPQI\tROI%\tEFFECTIVENESS")
			for _, m := range enriched {
				if m.Enrichment == nil {
					continue
				}
				roi := "-"
				if m.Enrichment.RollingROI != nil {
					roi = fmt.Sprintf("%.2f", *m.Enrichment.RollingROI)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%.2f\n",
					m.ID, m.Title,
					m.Enrichment.AwardPotential,
					m.Enrichment.PopularityQualityIndex,
					roi,
					m.Enrichment.EffectivenessScore)
			}
			return w.Flush()
		},
	}
}
