package main

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ipamkit/pkg/nipap"
)

// Set by the release build via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// VersionOutput is the JSON form of the version command.
type VersionOutput struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Built     string `json:"built"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Module    string `json:"module,omitempty"`
	Endpoint  string `json:"search_endpoint"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func versionInfo() VersionOutput {
	out := VersionOutput{
		Version:   version,
		Commit:    commit,
		Built:     date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Endpoint:  nipap.PathSmartSearchPrefix,
	}
	// go install builds carry no ldflags; fall back to the module data.
	if bi, ok := debug.ReadBuildInfo(); ok {
		out.Module = bi.Main.Path
		if out.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			out.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if out.Commit == "none" {
					out.Commit = s.Value
				}
			case "vcs.time":
				if out.Built == "unknown" {
					out.Built = s.Value
				}
			}
		}
	}
	return out
}

func runVersion() error {
	info := versionInfo()
	if jsonOut {
		return printJSON(info)
	}
	printInfo("ipamctl %s\n", info.Version)
	printInfo("  commit: %s\n", info.Commit)
	printInfo("  built: %s\n", info.Built)
	printInfo("  go: %s %s\n", info.GoVersion, info.Platform)
	printInfo("  search endpoint: %s\n", info.Endpoint)
	return nil
}
