package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/recordcheck/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/recordcheck.yaml
var rulesTemplate embed.FS

// rulesTemplatePath is the template location inside rulesTemplate.
const rulesTemplatePath = "templates/recordcheck.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .recordcheck rules file",
		Long: `Initialize creates a .recordcheck rules file in the current directory.

The generated file lists every check parameter with its built-in value:
- Duplicate detection key columns
- Required columns
- Numeric ranges for vital signs
- Date floor and maximum plausible age
- Phone number digit bounds

Examples:
  # Create .recordcheck in current directory
  recordcheck init

  # Create rules file at a specific path
  recordcheck init -o rules/clinic-a.yaml

  # Force overwrite existing file
  recordcheck init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the rules file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing rules file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("rules file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := rulesTemplate.ReadFile(rulesTemplatePath)
	if err != nil {
		return fmt.Errorf("failed to read rules template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write rules file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created rules file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to adapt the checks to your data, for example:")
	fmt.Fprintln(out, "  - Column names used by your export")
	fmt.Fprintln(out, "  - Plausible ranges for additional measurements")
	fmt.Fprintln(out, "  - Which fields are required")

	return nil
}
