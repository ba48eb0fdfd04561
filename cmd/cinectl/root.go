package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var serverFlag string

	rootCmd := &cobra.Command{
		Use:           "cinectl",
		Short:         "Operate a cinesage-engine instance over its HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "http://127.0.0.1:8080", "Base URL of the engine")

	rootCmd.AddCommand(newEnrichCommand(&serverFlag))
	rootCmd.AddCommand(newEnrichmentsCommand(&serverFlag))
	rootCmd.AddCommand(newRecommendCommand(&serverFlag))

	return rootCmd
}
