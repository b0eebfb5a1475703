package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build metadata injected through -ldflags by the release pipeline.
// Left empty for plain `go build`, where the module build info fills in.
var (
	version = ""
	commit  = ""
	date    = ""
)

// getVersion prefers the ldflags value, then the module version stamped
// by the toolchain, then a devel marker.
func getVersion() string {
	if version != "" {
		return version
	}
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		if buildInfo.Main.Version != "" {
			return buildInfo.Main.Version
		}
	}
	return "(devel)"
}

// getCommit prefers the ldflags value, falling back to the VCS revision
// recorded in the build info, shortened to seven characters.
func getCommit() string {
	if commit != "" {
		return commit
	}
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range buildInfo.Settings {
			if setting.Key == "vcs.revision" {
				if len(setting.Value) > 7 {
					return setting.Value[:7]
				}
				return setting.Value
			}
		}
	}
	return "unknown"
}

// getDate prefers the ldflags value, falling back to the VCS commit time
// recorded in the build info.
func getDate() string {
	if date != "" {
		return date
	}
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range buildInfo.Settings {
			if setting.Key == "vcs.time" {
				return setting.Value
			}
		}
	}
	return "unknown"
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show build information",
		Long: `Show the webrecon release version together with the commit and build
date it was produced from, so a crawl report can be traced back to the
scanner build that made it.`,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "webrecon version %s\n", getVersion())
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", getCommit())
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", getDate())
		},
	}
}
