package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/signet/clientcli"
)

var (
	downloadOutput string
	downloadStdout bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <object> [local-path]",
	Short: "Download an object through a signed URL",
	Long: `Request a signed URL for the object and fetch it.

The object is fetched straight from the storage backend; the Signet
server only issues the URL.

Examples:
  signet-cli download -b reports q1.pdf
  signet-cli download -b reports q1.pdf ./local.pdf
  signet-cli download --stdout config.json | jq .
  signet-cli download -o ./output.txt path/file.txt`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
}

func runDownload(cmd *cobra.Command, args []string) error {
	object := args[0]

	// Determine local path
	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, reader, err := client.Download(cmd.Context(), clientcli.DownloadOptions{
		Object:    object,
		LocalPath: localPath,
	})
	if err != nil {
		return err
	}

	formatter := getFormatter()

	// If stdout, write content to stdout
	if reader != nil {
		defer func() { _ = reader.Close() }()
		if _, err := io.Copy(os.Stdout, reader); err != nil {
			return err
		}
		// Metadata goes to stderr so it does not mix with the content
		if jsonOutput {
			return formatter.FormatDownload(os.Stderr, result)
		}
		return nil
	}

	return formatter.FormatDownload(os.Stdout, result)
}
