package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/signet/clientcli"
)

var (
	version = "dev"

	cfgFile    string
	profile    string
	endpoint   string
	bucket     string
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:     "signet-cli",
	Version: version,
	Short:   "Client for the Signet signed URL service",
	Long: `Signet CLI - Client for a Signet signed URL server

Connection settings are resolved from, in increasing precedence:
  - the selected profile in ~/.signet/config.yaml
  - SIGNET_ENDPOINT, SIGNET_BUCKET, SIGNET_EXPIRES
  - command-line flags`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.signet/config.yaml, env: SIGNET_CLI_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile name (default: the default profile, env: SIGNET_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:8080, env: SIGNET_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&bucket, "bucket", "b", "", "bucket name (env: SIGNET_BUCKET)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(issuancesCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		_ = getFormatter().FormatError(os.Stderr, err)
		os.Exit(1)
	}
}

// getConfigPath returns the profile file path from the flag, env, or default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges config from profile, env vars, and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	// 1. Load from profile
	profileName := profile
	if profileName == "" {
		profileName = clientcli.ProfileFromEnv()
	}

	configPath := getConfigPath()
	if configPath != "" {
		file, err := clientcli.LoadConfigFile(configPath)
		switch {
		case err == nil:
			p, profileErr := file.GetProfile(profileName)
			if profileErr != nil && (profileName != "" || !errors.Is(profileErr, clientcli.ErrNoProfiles)) {
				return nil, profileErr
			}
			configs = append(configs, clientcli.ConfigFromProfile(p))
		case errors.Is(err, os.ErrNotExist) && cfgFile == "" && profileName == "":
			// No profile file yet; fall through to env and flags
		default:
			return nil, err
		}
	}

	// 2. Load from environment variables
	configs = append(configs, clientcli.ConfigFromEnv())

	// 3. Load from flags
	configs = append(configs, &clientcli.Config{
		Endpoint: endpoint,
		Bucket:   bucket,
	})

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return clientcli.New(cfg)
}

// exitError is returned when we want to exit with a specific code
// but don't want an error message printed.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}
