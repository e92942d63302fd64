package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/nao1215/phyloreport/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/phyloreport.yaml
var configTemplate embed.FS

// templatePath is the location of the settings template in configTemplate.
const templatePath = "templates/phyloreport.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new phyloreport settings file",
		Long: `Initialize creates a new .phyloreport settings file in the current directory.

The generated file includes:
- Default inference and filter settings shown in the report
- Presentation options (tool name, stylesheet, page width)
- Documentation for all available options

Examples:
  # Create .phyloreport in current directory
  phyloreport init

  # Create settings file at a specific path
  phyloreport init -o ~/.config/phyloreport/config.yaml

  # Force overwrite existing file
  phyloreport init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the settings file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing settings file")

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
			return fmt.Errorf("settings file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read settings template: %w", err)
	}

	if err := ensureDir(outputPath); err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created settings file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to set defaults such as:")
	fmt.Fprintln(out, "  - Sequencing error rate and absent prior")
	fmt.Fprintln(out, "  - Sample and variant filter thresholds")
	fmt.Fprintln(out, "  - Report tool name and stylesheet")

	return nil
}
