package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/signet"
	"github.com/sagarc03/signet/config"
	"github.com/sagarc03/signet/database"
)

var issuancesCmd = &cobra.Command{
	Use:   "issuances",
	Short: "List recorded issuances",
	Long: `List entries in the issuance ledger, newest first.

The ledger records which object a URL was issued for and when it expires.
It never stores the URL or its signature.

Examples:
  # Show the latest issuances
  signet issuances --db-type sqlite --db-dsn signet.db

  # Page through one bucket
  signet issuances --bucket reports --limit 50 --cursor <next_cursor>`,
	Args: cobra.NoArgs,
	RunE: runIssuances,
}

var (
	issuancesBucket string
	issuancesLimit  int
	issuancesCursor string
	issuancesJSON   bool
)

func init() {
	issuancesCmd.Flags().StringVar(&issuancesBucket, "bucket", "", "only show issuances for this bucket")
	issuancesCmd.Flags().IntVar(&issuancesLimit, "limit", 100, "maximum number of entries to show")
	issuancesCmd.Flags().StringVar(&issuancesCursor, "cursor", "", "pagination cursor from a previous page")
	issuancesCmd.Flags().BoolVar(&issuancesJSON, "json", false, "print the page as JSON")
	rootCmd.AddCommand(issuancesCmd)
}

// connectLedger opens an existing ledger without migrating it.
func connectLedger(ctx context.Context, cfg database.Config) (database.Database, error) {
	db, err := database.Connect(ctx, cfg)
	if errors.Is(err, database.ErrDisabled) {
		return nil, errors.New("issuance ledger is disabled; set database.type to sqlite or postgres")
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err = db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err = db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("validate database schema: %w", err)
	}

	return db, nil
}

func runIssuances(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	db, err := connectLedger(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	list, err := db.GetRepo().List(ctx, signet.IssuanceQuery{
		Bucket: issuancesBucket,
		Limit:  issuancesLimit,
		Cursor: issuancesCursor,
	})
	if err != nil {
		return fmt.Errorf("list issuances: %w", err)
	}

	out := cmd.OutOrStdout()
	if issuancesJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ISSUED\tEXPIRES\tBACKEND\tBUCKET\tOBJECT\tREQUEST ID")
	for _, item := range list.Items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			item.IssuedAt.Local().Format(time.DateTime),
			item.ExpiresAt.Local().Format(time.DateTime),
			item.Backend,
			item.Bucket,
			item.Object,
			item.RequestID,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if list.NextCursor != "" {
		_, _ = fmt.Fprintf(out, "\nNext cursor: %s\n", list.NextCursor)
	}
	return nil
}
