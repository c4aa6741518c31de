package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/ipamkit/internal/config"
	"github.com/joshuapare/ipamkit/internal/logger"
	"github.com/joshuapare/ipamkit/pkg/nipap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type cliOptions struct {
	debug   bool
	config  string
	url     string
	help    bool
	version bool
	query   string
}

// parseArgs handles the few flags prefixexplorer takes. Remaining
// arguments form the initial query.
func parseArgs(args []string) (cliOptions, error) {
	var opts cliOptions
	var rest []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")
		switch name {
		case "--debug", "-d":
			opts.debug = true
		case "--help", "-h":
			opts.help = true
		case "--version", "-v":
			opts.version = true
		case "--config", "-c", "--url":
			if !hasValue {
				if i+1 >= len(args) {
					return opts, fmt.Errorf("flag %s needs a value", name)
				}
				i++
				value = args[i]
			}
			if name == "--url" {
				opts.url = value
			} else {
				opts.config = value
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return opts, fmt.Errorf("unknown flag %s", arg)
			}
			rest = append(rest, arg)
		}
	}
	opts.query = strings.Join(rest, " ")
	return opts, nil
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		printUsage()
		os.Exit(1)
	}
	if opts.help {
		printHelp()
		os.Exit(0)
	}
	if opts.version {
		fmt.Printf("prefixexplorer %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built: %s\n", date)
		os.Exit(0)
	}

	cfg, err := config.Load(opts.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if opts.url != "" {
		cfg.Backend.URL = opts.url
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	// Initialize logger (must be before any logging calls)
	logOpts := cfg.Log.LoggerOptions()
	if opts.debug {
		logOpts.Enabled = true
		logOpts.Level = slog.LevelDebug
	}
	if err := logger.Init(logOpts); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logging: %v\n", err)
	}
	logger.Info("starting prefixexplorer", "backend", cfg.Backend.URL, "config", cfg.Source, "debug", opts.debug)

	client, err := nipap.NewClient(cfg.Backend.URL, nipap.WithTimeout(cfg.Backend.Timeout))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m := NewModel(cfg, client)
	m.input.SetValue(opts.query)

	p := tea.NewProgram(m, tea.WithAltScreen())
	m.SetSender(p.Send)

	finalModel, err := p.Run()
	if err != nil {
		logger.Error("TUI error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
	if model, ok := finalModel.(Model); ok {
		model.Close()
	}

	logger.Info("prefixexplorer exited normally")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: prefixexplorer [options] [query]\n")
	fmt.Fprintf(os.Stderr, "Try 'prefixexplorer --help' for more information.\n")
}

func printHelp() {
	fmt.Println("prefixexplorer - Interactive TUI for browsing NIPAP prefixes")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  prefixexplorer [options] [query]")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Searches a NIPAP backend as you type and shows matching prefixes")
	fmt.Println("  in their place in the prefix tree, grouped by VRF.")
	fmt.Println()
	fmt.Println("  Navigation:")
	fmt.Println("    ↑/k, ↓/j    Navigate up/down (moving past the end loads more)")
	fmt.Println("    →/l, Enter  Expand prefix / show hidden prefixes")
	fmt.Println("    ←/h         Collapse prefix / Go to parent")
	fmt.Println("    /           Edit the search query")
	fmt.Println("    t           List top-level prefixes")
	fmt.Println("    ?           Show help")
	fmt.Println("    q           Quit")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -c, --config   Config file (default $IPAMKIT_CONFIG or ~/.config/ipamkit/config.yaml)")
	fmt.Println("      --url      NIPAP web backend URL")
	fmt.Println("  -d, --debug    Enable debug logging to ~/.ipamkit/logs/")
	fmt.Println("  -h, --help     Show this help message")
	fmt.Println("  -v, --version  Show version information")
	fmt.Println()
	fmt.Println("For non-interactive searches, use the 'ipamctl' command instead.")
}
