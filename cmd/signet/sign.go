package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sagarc03/signet"
	"github.com/sagarc03/signet/config"
)

var signCmd = &cobra.Command{
	Use:   "sign [flags] <bucket> <object>",
	Short: "Issue a signed URL locally",
	Long: `Issue a signed URL without starting the server.

Uses the same credentials, backend, and ledger configuration as 'signet serve'
and prints the URL to stdout.

Examples:
  # Sign with the default expiration
  signet sign reports q1.pdf

  # Sign for ten minutes and print the full result as JSON
  signet sign --expires 600 --json reports q1.pdf`,
	Args: cobra.ExactArgs(2),
	RunE: runSign,
}

var (
	signExpires int64
	signJSON    bool
)

func init() {
	signCmd.Flags().Int64VarP(&signExpires, "expires", "e", 0, "expiration in seconds (default: signing.default_expiration_seconds)")
	signCmd.Flags().BoolVar(&signJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(signCmd)
}

func runSign(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	comps, err := buildComponents(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer comps.Close()

	req := signet.SignRequest{
		Bucket:    args[0],
		Object:    args[1],
		RequestID: "cli-" + uuid.NewString(),
	}
	if cmd.Flags().Changed("expires") {
		req.Expiration = &signExpires
	}

	result, err := comps.service.Sign(ctx, req)
	if err != nil {
		return fmt.Errorf("sign %s/%s: %w", args[0], args[1], err)
	}

	out := cmd.OutOrStdout()
	if signJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	_, err = fmt.Fprintln(out, result.URL)
	return err
}
