package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "filament",
		Short: "Tooling for the filament reactive engine",
		Long: `Filament is a fine-grained reactive dependency-graph engine.

Signals hold state, memos derive values lazily, and effects react to
changes. This CLI ships the development tooling around the engine:

  • demo     run a live counter graph with the HTTP inspector
  • bench    measure propagation throughput on canonical graph shapes
  • version  print build information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		demoCmd(),
		benchCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}
