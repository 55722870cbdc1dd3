package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// newSyncCmd builds the `probite sync` command: one full discovery batch
// over every tracked subject.
func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one full discovery batch over all tracked subjects",
		Long:  "Queries the knowledge graph and the encyclopedia extraction service for\nevery tracked subject, reconciles the findings against the existing affairs,\nand prints the batch summary as JSON.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDependencies(cmd, func(ctx context.Context, deps *Dependencies) error {
				summary, err := deps.Pipeline.Run(ctx)
				if err != nil {
					return fmt.Errorf("discovery batch failed: %w", err)
				}
				return printJSON(cmd, summary)
			})
		},
	}
}
