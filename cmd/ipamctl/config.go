package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ipamkit/internal/config"
)

var configForce bool

func init() {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the ipamctl configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Long: `The init command writes the default configuration to the config path
(--config, $IPAMKIT_CONFIG or the XDG config directory). A backend URL
given with --url is written instead of the default one.

Example:
  ipamctl config init --url http://nipap.example.net:5000
  ipamctl config init --config ./ipamkit.yaml --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit()
		},
	}
	initCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigPath()
		},
	}

	cmd.AddCommand(initCmd, pathCmd)
	rootCmd.AddCommand(cmd)
}

func runConfigInit() error {
	path := config.Path(configPath)
	if path == "" {
		return errors.New("cannot determine config location (use --config)")
	}
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.Default()
	if backendURL != "" {
		cfg.Backend.URL = backendURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.SaveTo(cfg, path); err != nil {
		return err
	}
	printInfo("Wrote %s\n", path)
	return nil
}

func runConfigPath() error {
	path := config.Path(configPath)
	if path == "" {
		return errors.New("cannot determine config location")
	}
	if jsonOut {
		_, err := os.Stat(path)
		return printJSON(map[string]any{"path": path, "exists": err == nil})
	}
	printInfo("%s\n", path)
	return nil
}
