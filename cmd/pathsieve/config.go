package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bebsworthy/pathsieve/internal/catalog"
	"github.com/bebsworthy/pathsieve/internal/config"
	pkgconfig "github.com/bebsworthy/pathsieve/pkg/config"
)

type configOptions struct {
	validate   bool
	init       bool
	outputPath string
	force      bool
}

func newConfigCmd() *cobra.Command {
	opts := &configOptions{}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Validate or create the pathsieve configuration",
		Long: `Inspect, validate or create the pathsieve configuration.

Without flags the resolved configuration is summarized. The file is looked
up with --config, the PATHSIEVE_CONFIG environment variable, the current
directory, the project root and the home directory, in that order.`,
		Example: `  # Validate existing configuration
  pathsieve config --validate

  # Create a starter configuration
  pathsieve config --init

  # Create configuration in a specific location
  pathsieve config --init --output /path/to/.pathsieve.json --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.init {
				return runInitConfig(cmd.OutOrStdout(), opts)
			}
			return runValidateConfig(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.validate)
		},
	}

	cmd.Flags().BoolVar(&opts.validate, "validate", false, "Validate the configuration and fail on errors")
	cmd.Flags().BoolVar(&opts.init, "init", false, "Write a starter configuration file")
	cmd.Flags().StringVar(&opts.outputPath, "output", config.ConfigFileName, "Output path for --init")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite an existing file with --init")

	return cmd
}

// runValidateConfig validates the current configuration and prints a summary
func runValidateConfig(out, errOut io.Writer, strict bool) error {
	if strict {
		_, _ = fmt.Fprintln(out, "Validating pathsieve configuration...") //nolint:errcheck
	}

	validator := config.NewValidator()
	res, err := loadConfiguration()
	if err != nil {
		printSuggestions(errOut, validator.SuggestFixes(err))
		return err
	}

	validator.KnownToggles = builtinToggleNames(res.Config)
	if err := validator.Validate(res.Config); err != nil {
		_, _ = fmt.Fprintf(errOut, "\n❌ Configuration validation failed:\n   %v\n", err) //nolint:errcheck
		printSuggestions(errOut, validator.SuggestFixes(err))
		return fmt.Errorf("configuration is invalid")
	}

	if strict {
		_, _ = fmt.Fprintln(out, "\n✅ Configuration is valid!") //nolint:errcheck
	}

	if warnings := validator.Warnings(res.Config); len(warnings) > 0 {
		_, _ = fmt.Fprintf(errOut, "\n⚠️  Warnings:\n") //nolint:errcheck
		for _, w := range warnings {
			_, _ = fmt.Fprintf(errOut, "   • %s\n", w) //nolint:errcheck
		}
	}

	printSummary(out, res)
	return nil
}

func builtinToggleNames(cfg *pkgconfig.Config) []string {
	if !cfg.Builtins {
		return nil
	}
	var names []string
	for _, d := range catalog.Defaults() {
		names = append(names, d.Name)
	}
	return names
}

func printSuggestions(w io.Writer, suggestions []string) {
	if len(suggestions) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "\n💡 Suggestions:\n") //nolint:errcheck
	for _, s := range suggestions {
		_, _ = fmt.Fprintf(w, "   • %s\n", s) //nolint:errcheck
	}
}

func printSummary(w io.Writer, res *config.Resolved) {
	p := func(format string, args ...interface{}) {
		_, _ = fmt.Fprintf(w, format, args...) //nolint:errcheck
	}

	p("\n📋 Configuration Summary:\n")
	if res.Path != "" {
		p("   File: %s\n", res.Path)
	} else {
		p("   File: none (built-in catalog only)\n")
	}
	p("   Version: %s\n", res.Version)
	p("   Built-in catalog: %t\n", res.Builtins)
	if len(res.Included) > 0 {
		p("   Includes: %d files\n", len(res.Included))
		for _, inc := range res.Included {
			p("   • %s\n", inc)
		}
	}
	p("   Filters: %d configured\n", len(res.Filters))
	for _, f := range res.Filters {
		scope := "any position"
		if f.ContentIndex != nil {
			scope = fmt.Sprintf("content index %d", *f.ContentIndex)
		}
		p("   • %s (%d groups, %d exceptions, %s)\n", f.Name, len(f.Groups), len(f.Exceptions), scope)
	}
	if names := res.ToggleNames(); len(names) > 0 {
		p("   Toggles: %d referenced\n", len(names))
	}
}

// starterConfig is written by config --init
func starterConfig() *pkgconfig.Config {
	index := 0
	return &pkgconfig.Config{
		Version:  config.CurrentSchemaVersion,
		Builtins: true,
		Toggles:  map[string]bool{"hide_chip_bar": true},
		Filters: []*pkgconfig.FilterConfig{
			{
				Name:         "chip-bar",
				Exceptions:   []string{"comment_thread"},
				ContentIndex: &index,
				Groups: []*pkgconfig.GroupConfig{
					{
						Name:     "chips",
						Kind:     pkgconfig.KindPath,
						Toggle:   "hide_chip_bar",
						Patterns: []string{"feed_filter_chip_bar"},
					},
				},
			},
		},
	}
}

func runInitConfig(out io.Writer, opts *configOptions) error {
	if _, err := os.Stat(opts.outputPath); err == nil && !opts.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", opts.outputPath)
	}

	data, err := pkgconfig.SaveConfig(starterConfig())
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.outputPath, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	_, _ = fmt.Fprintf(out, "✅ Configuration written to %s\n", opts.outputPath) //nolint:errcheck
	return nil
}
