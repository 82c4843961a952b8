package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/signet/clientcli"
)

var (
	issuancesLimit  int
	issuancesAll    bool
	issuancesCursor string
)

var issuancesCmd = &cobra.Command{
	Use:   "issuances",
	Short: "List the server's issuance ledger",
	Long: `List URLs the server has issued, newest first.

NOTE: This command only works when the server has an issuance ledger
      configured. Otherwise the server responds with 404.

Examples:
  signet-cli issuances
  signet-cli issuances -b reports --limit 10
  signet-cli issuances --all --json
  signet-cli issuances --cursor "eyJpc3N1ZWRfYXQiOi..."`,
	Args: cobra.NoArgs,
	RunE: runIssuances,
}

func init() {
	issuancesCmd.Flags().IntVarP(&issuancesLimit, "limit", "l", 100, "max results per page (max: 1000)")
	issuancesCmd.Flags().BoolVar(&issuancesAll, "all", false, "fetch all pages")
	issuancesCmd.Flags().StringVar(&issuancesCursor, "cursor", "", "pagination cursor")
}

func runIssuances(cmd *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	// Only --bucket filters; a profile's default bucket does not.
	result, err := client.Issuances(cmd.Context(), clientcli.IssuanceOptions{
		Bucket: bucket,
		Limit:  issuancesLimit,
		Cursor: issuancesCursor,
		All:    issuancesAll,
	})
	if err != nil {
		return err
	}

	return getFormatter().FormatIssuances(os.Stdout, result)
}
