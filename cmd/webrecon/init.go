package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/webrecon.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = ".webrecon"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new webrecon configuration file",
		Long: `Init creates a new .webrecon configuration file in the current directory.

The generated file includes commented examples for per-site settings:
authentication cookies, extra request headers, and depth overrides.

Examples:
  # Create .webrecon in current directory
  webrecon init

  # Create config file at a specific path
  webrecon init -o myconfig.yaml

  # Force overwrite existing file
  webrecon init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

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
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/webrecon.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Config files hold credentials, so they are owner-readable only.
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to configure site-specific settings such as:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Authentication cookies and headers")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Crawl depth per site")

	return nil
}
