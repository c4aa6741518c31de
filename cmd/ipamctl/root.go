package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/joshuapare/ipamkit/internal/config"
	"github.com/joshuapare/ipamkit/internal/logger"
	"github.com/joshuapare/ipamkit/pkg/nipap"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	debug      bool
	configPath string
	backendURL string
)

var rootCmd = &cobra.Command{
	Use:   "ipamctl",
	Short: "Search a NIPAP address plan from the command line",
	Long: `ipamctl queries the smart search of a NIPAP web backend and prints
the matching prefixes as a tree, together with the parents and neighbors
that put them in context. Non-matching prefixes are collapsed the same way
the web interface does it.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Write debug logs to the log directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&backendURL, "url", "", "NIPAP web backend URL (overrides config)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration, initializes logging and builds the backend
// client shared by all subcommands.
func setup() (config.Config, *nipap.Client, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, err
	}
	if backendURL != "" {
		cfg.Backend.URL = backendURL
		if err := cfg.Validate(); err != nil {
			return cfg, nil, err
		}
	}

	logOpts := cfg.Log.LoggerOptions()
	if debug {
		logOpts.Enabled = true
		logOpts.Level = slog.LevelDebug
	}
	if err := logger.Init(logOpts); err != nil {
		return cfg, nil, fmt.Errorf("initializing logger: %w", err)
	}
	if cfg.Source != "" {
		printVerbose("Using config: %s\n", cfg.Source)
	}

	client, err := nipap.NewClient(cfg.Backend.URL, nipap.WithTimeout(cfg.Backend.Timeout))
	if err != nil {
		return cfg, nil, err
	}
	logger.Debug("ipamctl started", "backend", cfg.Backend.URL)
	return cfg, client, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
