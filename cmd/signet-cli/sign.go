package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/signet/clientcli"
)

var signExpires int64

var signCmd = &cobra.Command{
	Use:   "sign <object> [object...]",
	Short: "Request signed URLs for objects",
	Long: `Request a GET-only signed URL for each object.

The bucket comes from --bucket or the profile. Objects that fail are
reported individually and the command exits non-zero.

Examples:
  signet-cli sign -b reports q1.pdf
  signet-cli sign -b reports --expires 600 q1.pdf q2.pdf
  signet-cli sign -q q1.pdf | xargs curl -O`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSign,
}

func init() {
	signCmd.Flags().Int64Var(&signExpires, "expires", 0, "expiration in seconds (default: profile or server default)")
}

func runSign(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Sign(cmd.Context(), clientcli.SignOptions{
		Objects: args,
		Expires: signExpires,
	})
	if err != nil {
		return err
	}

	formatter := getFormatter()
	if err := formatter.FormatSign(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasSignErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
