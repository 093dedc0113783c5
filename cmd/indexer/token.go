package main

import (
	"fmt"
	"os"
	"time"

	"codeberg.org/kbase/server/internal/auth"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	tokenEmail string
	tokenTTL   time.Duration
)

// only needs JWT_SECRET, so it skips the full setup
var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Mint a bearer token for local testing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load() //nolint:errcheck // .env is optional

		tokens, err := auth.NewTokens(os.Getenv("JWT_SECRET"), tokenTTL)
		if err != nil {
			return err
		}

		token, err := tokens.Generate(args[0], tokenEmail)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token) //nolint:errcheck // terminal output

		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
