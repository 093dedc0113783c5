// Command indexer runs knowledge-base maintenance outside the API server:
// batch indexing of pending chunks, index status and development tokens.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "indexer",
	Short: "Knowledge base indexing tool",
	Long: `indexer embeds pending document chunks and upserts them into the vector index.
It reads the same environment (.env, DATABASE_URL, OPENAI_API_KEY, ...) as the API server.`,
	Version:       version,
	SilenceUsage:  true,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(tokenCmd)
}
