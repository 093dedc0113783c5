package main

import (
	"errors"
	"fmt"

	"codeberg.org/kbase/server/internal/indexer"
	"codeberg.org/kbase/server/internal/locks"
	"github.com/spf13/cobra"
)

var (
	indexProject string
	indexOwner   string
	indexLimit   int
	indexBatch   int
	indexForce   bool
	indexQuiet   bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index pending chunks",
	Long: `Embed chunks that are not indexed under the configured embedding model and
dimension, upsert them into the vector index and mark them indexed.

Examples:
  # Index every project
  indexer index

  # Index one project, re-embedding everything
  indexer index --project <id> --owner <user> --force

  # Index all projects of one user in small batches
  indexer index --owner <user> --batch 16`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexProject, "project", "", "project id (requires --owner)")
	indexCmd.Flags().StringVar(&indexOwner, "owner", "", "owner user id")
	indexCmd.Flags().IntVar(&indexLimit, "limit", indexer.DefaultLimit, "maximum chunks per project (1-2000)")
	indexCmd.Flags().IntVar(&indexBatch, "batch", indexer.DefaultBatchSize, "embedding batch size (1-256)")
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "re-index chunks that are already indexed")
	indexCmd.Flags().BoolVar(&indexQuiet, "quiet", false, "disable the progress bar")
}

func runIndex(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	targets, err := e.targets(ctx, indexProject, indexOwner)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	total := 0
	skipped := 0

	for _, p := range targets {
		progress, finish := newProgress(!indexQuiet && progressEnabled(), p.Name)

		res, err := e.indexer.Index(ctx, indexer.Request{
			ProjectID: p.ID,
			OwnerID:   p.OwnerID,
			Limit:     indexLimit,
			BatchSize: indexBatch,
			Force:     indexForce,
		}, progress)

		finish()

		if errors.Is(err, locks.ErrLocked) {
			fmt.Fprintf(out, "%s (%s): skipped, indexing already in progress\n", p.Name, p.ID) //nolint:errcheck // terminal output
			skipped++
			continue
		}

		if err != nil {
			return fmt.Errorf("project %s: %w", p.ID, err)
		}

		fmt.Fprintf(out, "%s (%s): indexed %d chunks\n", p.Name, p.ID, res.IndexedCount) //nolint:errcheck // terminal output
		total += res.IndexedCount
	}

	fmt.Fprintf(out, "done: %d chunks across %d projects, %d skipped\n", total, len(targets)-skipped, skipped) //nolint:errcheck // terminal output

	return nil
}
