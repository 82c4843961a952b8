package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sagarc03/signet/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "signet",
	Short:   "Signed URL issuing service for GCS and S3",
	Long: `Signet issues time-limited, GET-only signed URLs for objects in
Google Cloud Storage or S3, so callers never hold storage credentials.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := loadEnvFile(envFile); err != nil {
			return err
		}

		configFiles, _ := cmd.Flags().GetStringSlice("config")
		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Log)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path, repeatable; later files override earlier (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before configuration; ignored when missing")
	rootCmd.PersistentFlags().String("backend", "", "signing backend: gcs, s3 (default: gcs, env: SIGNET_SIGNING_BACKEND)")
	rootCmd.PersistentFlags().String("credentials", "", "credential file path (default: /app/sa.json, env: SIGNET_CREDENTIALS_PATH)")
	rootCmd.PersistentFlags().String("db-type", "", "issuance ledger type: none, sqlite, postgres (default: none, env: SIGNET_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "issuance ledger connection string (env: SIGNET_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default: info)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text, json (default: text)")
}

// loadEnvFile exports the variables in path without overriding ones already
// set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if err == nil {
		slog.Debug("loaded env file", "path", path)
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
