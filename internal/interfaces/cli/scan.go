package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// newScanDuplicatesCmd builds the `probite scan-duplicates` command.
func newScanDuplicatesCmd() *cobra.Command {
	var subjectFlag string

	cmd := &cobra.Command{
		Use:   "scan-duplicates",
		Short: "Scan one subject's affairs for likely duplicates",
		Long:  "Scores every pair of recorded affairs of the given subject and prints the\npairs that likely describe the same real-world proceeding, best match first.\nThe scan is read-only; merging is an editorial decision.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			subjectID, err := uuid.Parse(subjectFlag)
			if err != nil {
				return fmt.Errorf("malformed subject id %q: %w", subjectFlag, err)
			}
			return withDependencies(cmd, func(ctx context.Context, deps *Dependencies) error {
				result, err := deps.Scanner.Scan(ctx, subjectID)
				if err != nil {
					return fmt.Errorf("duplicate scan failed: %w", err)
				}
				return printJSON(cmd, result)
			})
		},
	}

	cmd.Flags().StringVar(&subjectFlag, "subject", "", "subject UUID to scan [REQUIRED]")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
