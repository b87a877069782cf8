package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/bebsworthy/pathsieve/internal/catalog"
)

// defaultTogglesFile is where toggles are kept when --file is not given
const defaultTogglesFile = ".pathsieve-toggles.json"

type togglesOptions struct {
	file        string
	set         []string
	reset       bool
	interactive bool
}

// askToggles asks which toggles should be on. Replaced in tests.
var askToggles = surveyToggles

func newTogglesCmd() *cobra.Command {
	opts := &togglesOptions{}

	cmd := &cobra.Command{
		Use:   "toggles",
		Short: "List and change filter group toggles",
		Long: `List, change or interactively edit the toggles that switch filter groups.

Toggles start from the built-in defaults and the configuration's "toggles"
object. Values saved in the toggles file are applied on top, and are what
"classify --toggles" and "classify --watch" read.`,
		Example: `  # List toggles with their current values
  pathsieve toggles

  # Turn groups on and off
  pathsieve toggles --set hide_chapters=true --set hide_general_ads=false

  # Pick enabled toggles from a list
  pathsieve toggles --interactive

  # Go back to the defaults
  pathsieve toggles --reset`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggles(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", defaultTogglesFile, "Toggles file to read and write")
	cmd.Flags().StringArrayVar(&opts.set, "set", nil, "Set a toggle, as name=true or name=false (repeatable)")
	cmd.Flags().BoolVar(&opts.reset, "reset", false, "Restore every toggle to its default")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Choose enabled toggles interactively")

	return cmd
}

func runToggles(out io.Writer, opts *togglesOptions) error {
	res, err := loadConfiguration()
	if err != nil {
		return err
	}
	e, err := newEngine(res, nil, nil)
	if err != nil {
		return err
	}
	store := e.toggles

	if _, err := os.Stat(opts.file); err == nil && !opts.reset {
		if err := store.LoadFile(opts.file); err != nil {
			return err
		}
	}

	changed := opts.reset
	if opts.reset {
		store.Reset()
	}

	for _, assignment := range opts.set {
		name, enabled, err := parseAssignment(assignment)
		if err != nil {
			return err
		}
		store.Set(name, enabled)
		changed = true
	}

	if opts.interactive {
		names := store.Names()
		var current []string
		for _, name := range names {
			if store.Enabled(name) {
				current = append(current, name)
			}
		}

		selected, err := askToggles(names, current)
		if err != nil {
			return err
		}
		on := make(map[string]bool, len(selected))
		for _, name := range selected {
			on[name] = true
		}
		for _, name := range names {
			store.Set(name, on[name])
		}
		changed = true
	}

	if changed {
		if err := store.SaveFile(opts.file); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "✅ Toggles saved to %s\n\n", opts.file) //nolint:errcheck
	}

	printToggles(out, store.Snapshot(), toggleDefaults(res.Config))
	return nil
}

// parseAssignment splits name=bool
func parseAssignment(s string) (string, bool, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", false, fmt.Errorf("invalid toggle assignment %q (expected name=true|false)", s)
	}
	enabled, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return "", false, fmt.Errorf("invalid value for toggle %q: %w", name, err)
	}
	return name, enabled, nil
}

func printToggles(w io.Writer, values, defaults map[string]bool) {
	descriptions := make(map[string]string)
	for _, d := range catalog.Defaults() {
		descriptions[d.Name] = d.Description
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		state := "off"
		if values[name] {
			state = "on"
		}
		marker := " "
		if values[name] != defaults[name] {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s %-3s %-28s %s\n", marker, state, name, descriptions[name]) //nolint:errcheck
	}
}

// surveyToggles shows a multi-select of every toggle
func surveyToggles(names, enabled []string) ([]string, error) {
	descriptions := make(map[string]string)
	for _, d := range catalog.Defaults() {
		descriptions[d.Name] = d.Description
	}

	prompt := &survey.MultiSelect{
		Message:  "Enabled toggles:",
		Options:  names,
		Default:  enabled,
		PageSize: 15,
		Description: func(value string, index int) string {
			return descriptions[value]
		},
	}

	var selected []string
	if err := survey.AskOne(prompt, &selected); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("interactive mode needs a terminal")
		}
		return nil, fmt.Errorf("toggle selection cancelled: %w", err)
	}
	return selected, nil
}
