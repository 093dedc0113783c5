package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	statusProject string
	statusOwner   string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show indexing progress per project",
	Long: `Show how many chunks of each project are indexed under the configured
embedding model and dimension.

Examples:
  indexer status
  indexer status --owner <user>`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusProject, "project", "", "project id (requires --owner)")
	statusCmd.Flags().StringVar(&statusOwner, "owner", "", "owner user id")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	targets, err := e.targets(ctx, statusProject, statusOwner)
	if err != nil {
		return err
	}

	model := e.embedder.Model()
	dim := e.embedder.Dimension()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "embedding: %s (%d)\n\n", model, dim) //nolint:errcheck // terminal output
	fmt.Fprintln(w, "PROJECT\tNAME\tINDEXED\tTOTAL\tPENDING") //nolint:errcheck // terminal output

	for _, p := range targets {
		stats, err := e.documents.IndexStats(ctx, p.ID, p.OwnerID, model, dim)
		if err != nil {
			return fmt.Errorf("project %s: %w", p.ID, err)
		}

		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", p.ID, p.Name, stats.Indexed, stats.Total, stats.Total-stats.Indexed) //nolint:errcheck // terminal output
	}

	return w.Flush()
}
