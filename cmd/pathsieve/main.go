// Package main is the entry point for the pathsieve CLI tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bebsworthy/pathsieve/internal/debug"
)

// Version is set at build time via ldflags
var Version = "dev"

// Global flags
var (
	debugFlag  bool
	configPath string
)

// osExit is a variable to allow mocking os.Exit in tests
var osExit = os.Exit

// newRootCmd creates and returns the root command
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pathsieve",
		Short: "Classify UI components by their structural path",
		Long: `Pathsieve decides whether a UI component should be hidden by matching
its identifier, structural path and payload against toggleable pattern groups.

Filters come from the built-in catalog and from .pathsieve.json. Each group
of patterns is switched by a named toggle that can be flipped while a
classification run is in progress.

GETTING STARTED:
  1. Check your configuration:
     $ pathsieve config --validate

  2. Classify a path:
     $ pathsieve classify --path "feed.eml|ads_video_with_context.eml"

  3. Stream requests as JSON lines:
     $ cat requests.jsonl | pathsieve classify --format json

EXAMPLES:
  # Turn built-in groups on and off
  $ pathsieve toggles --interactive

  # Use a specific config file
  $ pathsieve --config ./custom-config.json classify --path "..."

  # Enable debug output for troubleshooting
  $ pathsieve --debug classify --path "..."`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debugFlag {
				debug.Enable()
			}
		},
	}

	cmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug output")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")

	// Replaced by our own completion command
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(newClassifyCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newTogglesCmd())
	cmd.AddCommand(newCompletionCmd())
	cmd.AddCommand(newManCmd())

	return cmd
}

func main() {
	// Enable debug logging before cobra parses flags so flag parsing is logged too
	parseGlobalFlags(os.Args[1:])
	if debugFlag {
		debug.Enable()
	}

	// Interrupting a streamed or batch run stops it at the next request
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		osExit(1)
	}
}

// parseGlobalFlags extracts global flags from command line
func parseGlobalFlags(args []string) {
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--debug":
			debugFlag = true
		case args[i] == "--config":
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				configPath = args[i+1]
				i++
			}
		case strings.HasPrefix(args[i], "--config="):
			configPath = strings.TrimPrefix(args[i], "--config=")
		}
	}
}
