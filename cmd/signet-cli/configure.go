package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/signet/clientcli"
)

// errCancelled marks a prompt the user backed out of.
var errCancelled = errors.New("cancelled")

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage server profiles",
	Long: `Manage server profiles in the configuration file.

A profile stores the endpoint of a Signet server together with an optional
default bucket and expiration. Select one with --profile or SIGNET_PROFILE.

Configuration is stored in ~/.signet/config.yaml`,
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured profiles",
	Long: `List all profiles configured in the config file.

The default profile is marked with an asterisk (*).`,
	Args: cobra.NoArgs,
	RunE: runConfigureList,
}

var configureAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or update a profile",
	Long: `Add a profile interactively, or update it if the name already exists.

You will be prompted for the endpoint URL, an optional default bucket, an
optional default expiration in seconds, and whether the profile becomes the
default. Existing values are offered as defaults when updating.

The endpoint's /healthz is checked before saving unless --skip-check is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigureAdd,
}

var configureRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigureRemove,
}

var configureSetDefaultCmd = &cobra.Command{
	Use:   "set-default <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigureSetDefault,
}

var configureShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show profile details",
	Long: `Show details for a profile.

If no name is provided, shows the default profile.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigureShow,
}

var (
	configureSkipCheck bool
	configureYes       bool
)

func init() {
	configureAddCmd.Flags().BoolVar(&configureSkipCheck, "skip-check", false, "save without checking that the server is reachable")
	configureRemoveCmd.Flags().BoolVarP(&configureYes, "yes", "y", false, "remove without asking for confirmation")

	configureCmd.AddCommand(configureListCmd)
	configureCmd.AddCommand(configureAddCmd)
	configureCmd.AddCommand(configureRemoveCmd)
	configureCmd.AddCommand(configureSetDefaultCmd)
	configureCmd.AddCommand(configureShowCmd)
}

// loadProfiles reads the profile file. With allowMissing, an absent file
// yields an empty set instead of an error.
func loadProfiles(allowMissing bool) (*clientcli.ConfigFile, error) {
	cfg, err := clientcli.LoadConfigFile(getConfigPath())
	switch {
	case err == nil:
		return cfg, nil
	case allowMissing && errors.Is(err, os.ErrNotExist):
		return &clientcli.ConfigFile{}, nil
	default:
		return nil, fmt.Errorf("load config: %w", err)
	}
}

func runConfigureList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadProfiles(true)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(cfg.Profiles) == 0 {
		_, _ = fmt.Fprintln(out, "No profiles configured.")
		_, _ = fmt.Fprintln(out, "Run 'signet-cli configure add <name>' to create one.")
		return nil
	}

	def, err := cfg.GetDefaultProfile()
	if err != nil {
		return err
	}

	return getFormatter().FormatProfileList(out, cfg.Profiles, def.Name)
}

func runConfigureAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	out := cmd.OutOrStdout()

	cfg, err := loadProfiles(true)
	if err != nil {
		return err
	}

	existing, _ := cfg.GetProfile(name)
	if existing != nil {
		if err := confirm(fmt.Sprintf("Profile '%s' already exists. Update it", name)); err != nil {
			return cancelled(out, err)
		}
	}

	profile, err := promptProfile(name, existing)
	if err != nil {
		return cancelled(out, err)
	}

	// The first profile always becomes the default.
	profile.Default = len(cfg.Profiles) == 0 || confirm("Set as default profile") == nil

	if !configureSkipCheck {
		_, _ = fmt.Fprint(out, "Testing connection... ")
		if connErr := testServerConnection(profile.Endpoint); connErr != nil {
			_, _ = fmt.Fprintln(out, "FAILED")
			_, _ = fmt.Fprintf(out, "Warning: could not reach server: %v\n", connErr)
			if err := confirm("Save profile anyway"); err != nil {
				return cancelled(out, err)
			}
		} else {
			_, _ = fmt.Fprintln(out, "OK")
		}
	}

	if existing != nil {
		err = cfg.UpdateProfile(profile)
	} else {
		err = cfg.AddProfile(profile)
	}
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if profile.Default {
		if err := cfg.SetDefault(profile.Name); err != nil {
			return err
		}
	}

	if err := cfg.Save(getConfigPath()); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	verb := "added"
	if existing != nil {
		verb = "updated"
	}
	_, _ = fmt.Fprintf(out, "Profile '%s' %s.\n", name, verb)
	if profile.Default {
		_, _ = fmt.Fprintln(out, "Set as default profile.")
	}

	return nil
}

// promptProfile asks for each profile field, offering the current values of
// existing as defaults.
func promptProfile(name string, existing *clientcli.Profile) (clientcli.Profile, error) {
	current := clientcli.Profile{Endpoint: clientcli.DefaultEndpoint}
	if existing != nil {
		current = *existing
	}

	endpoint, err := (&promptui.Prompt{
		Label:   "Endpoint URL",
		Default: current.Endpoint,
		Validate: func(input string) error {
			if input == "" {
				return errors.New("endpoint URL is required")
			}
			return clientcli.ValidateEndpoint(input)
		},
	}).Run()
	if err != nil {
		return clientcli.Profile{}, promptError(err)
	}

	bucket, err := (&promptui.Prompt{
		Label:     "Default bucket (optional)",
		Default:   current.Bucket,
		AllowEdit: true,
	}).Run()
	if err != nil {
		return clientcli.Profile{}, promptError(err)
	}

	var expiresDefault string
	if current.Expires > 0 {
		expiresDefault = strconv.FormatInt(current.Expires, 10)
	}
	expiresRaw, err := (&promptui.Prompt{
		Label:   "Default expiration in seconds (optional)",
		Default: expiresDefault,
		Validate: func(input string) error {
			if input == "" {
				return nil
			}
			if n, err := strconv.ParseInt(input, 10, 64); err != nil || n <= 0 {
				return errors.New("expiration must be a positive integer")
			}
			return nil
		},
	}).Run()
	if err != nil {
		return clientcli.Profile{}, promptError(err)
	}
	expires, _ := strconv.ParseInt(expiresRaw, 10, 64)

	return clientcli.Profile{
		Name:     name,
		Endpoint: strings.TrimSuffix(endpoint, "/"),
		Bucket:   strings.TrimSpace(bucket),
		Expires:  expires,
	}, nil
}

func runConfigureRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := loadProfiles(false)
	if err != nil {
		return err
	}

	if _, err := cfg.GetProfile(name); err != nil {
		return err
	}

	if !configureYes {
		if err := confirm(fmt.Sprintf("Remove profile '%s'", name)); err != nil {
			return cancelled(cmd.OutOrStdout(), err)
		}
	}

	if err := cfg.RemoveProfile(name); err != nil {
		return fmt.Errorf("remove profile: %w", err)
	}

	if err := cfg.Save(getConfigPath()); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' removed.\n", name)
	return nil
}

func runConfigureSetDefault(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := loadProfiles(false)
	if err != nil {
		return err
	}

	if err := cfg.SetDefault(name); err != nil {
		return err
	}

	if err := cfg.Save(getConfigPath()); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Default profile set to '%s'.\n", name)
	return nil
}

func runConfigureShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadProfiles(false)
	if err != nil {
		return err
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	p, err := cfg.GetProfile(name)
	if err != nil {
		return err
	}

	def, err := cfg.GetDefaultProfile()
	if err != nil {
		return err
	}

	return getFormatter().FormatProfileShow(cmd.OutOrStdout(), *p, p.Name == def.Name)
}

// testServerConnection checks the server's health endpoint.
func testServerConnection(endpointURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := clientcli.New(&clientcli.Config{Endpoint: endpointURL}, clientcli.WithTimeout(5*time.Second))
	if err != nil {
		return err
	}

	return client.Health(ctx)
}

// confirm runs a yes/no prompt. Any answer other than yes is errCancelled.
func confirm(label string) error {
	if _, err := (&promptui.Prompt{Label: label, IsConfirm: true}).Run(); err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			return err
		}
		return errCancelled
	}
	return nil
}

func promptError(err error) error {
	if errors.Is(err, promptui.ErrAbort) {
		return errCancelled
	}
	return err
}

// cancelled turns a user cancellation into a clean exit. Ctrl-C exits the
// process; other prompt failures are returned.
func cancelled(w io.Writer, err error) error {
	switch {
	case errors.Is(err, promptui.ErrInterrupt):
		_, _ = fmt.Fprintln(w, "\nCancelled.")
		os.Exit(0)
	case errors.Is(err, errCancelled):
		_, _ = fmt.Fprintln(w, "Cancelled.")
		return nil
	}
	return err
}
