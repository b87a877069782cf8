package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newManCmd() *cobra.Command {
	var manDir string

	cmd := &cobra.Command{
		Use:   "man",
		Short: "Generate man pages for pathsieve",
		Long: `Generate man pages for pathsieve and all its subcommands.

The generated pages follow the standard man page format and can be
installed system-wide.`,
		Example: `  # Generate man pages in a specific directory
  pathsieve man --dir ./docs/man

  # Install them
  sudo cp ./docs/man/*.1 /usr/local/share/man/man1/
  man pathsieve-classify`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateMan(cmd, manDir)
		},
	}

	cmd.Flags().StringVar(&manDir, "dir", ".", "Directory to write man pages to")
	return cmd
}

func runGenerateMan(cmd *cobra.Command, manDir string) error {
	if err := os.MkdirAll(manDir, 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	header := &doc.GenManHeader{
		Title:   "PATHSIEVE",
		Section: "1",
		Source:  fmt.Sprintf("pathsieve %s", Version),
		Manual:  "Pathsieve Manual",
	}

	if err := doc.GenManTree(cmd.Root(), header, manDir); err != nil {
		return fmt.Errorf("failed to generate man pages: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(manDir, "*.1"))
	if err != nil {
		return fmt.Errorf("failed to list generated files: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "✅ Man pages generated in %s\n", manDir) //nolint:errcheck
	for _, file := range files {
		_, _ = fmt.Fprintf(out, "  • %s\n", filepath.Base(file)) //nolint:errcheck
	}
	return nil
}
