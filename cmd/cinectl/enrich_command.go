package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type runEnrichmentRequest struct {
	MovieCount int `json:"movieCount,omitempty"`
}

type runEnrichmentResponse struct {
	Status    string `json:"status"`
	Requested int    `json:"requested"`
	Enriched  int    `json:"enriched"`
	Movies    []struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	} `json:"movies"`
}

func newEnrichCommand(server *string) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Run a synchronous enrichment batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(*server)

			var body any
			if count > 0 {
				body = runEnrichmentRequest{MovieCount: count}
			}

			var result runEnrichmentResponse
			if err := client.post(cmd.Context(), "/api/enrichment/run", body, &result); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Enriched %d of %d requested movies\n", result.Enriched, result.Requested)
			for _, m := range result.Movies {
				fmt.Fprintf(cmd.OutOrStdout(), "  %d  %s\n", m.ID, m.Title)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "Movies to enrich (server default when omitted)")
	return cmd
}
