package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/signet/config"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired issuances from the ledger",
	Long: `Permanently remove ledger entries whose URLs have expired.

An entry is removed once its expiry is older than --older-than. Run this
periodically to bound the size of the ledger.

Examples:
  # Remove entries that expired more than 30 days ago
  signet prune --older-than 720h

  # Remove every expired entry
  signet prune --older-than 0`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

var pruneOlderThan time.Duration

func init() {
	pruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 30*24*time.Hour, "minimum time since expiry before an entry is removed")
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	if pruneOlderThan < 0 {
		return fmt.Errorf("--older-than must not be negative: %s", pruneOlderThan)
	}

	ctx := cmd.Context()

	db, err := connectLedger(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	cutoff := time.Now().Add(-pruneOlderThan)
	slog.Info("starting prune", "expired_before", cutoff)

	removed, err := db.GetRepo().Prune(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}

	slog.Info("prune complete", "removed", removed)
	return nil
}
