package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/fsutil"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new a11yscan configuration file",
		Long: `Initialize creates a new .a11yscan.yaml configuration file in the current directory.

The generated file contains every setting with its default value and a
comment naming the environment variable that overrides it.

Examples:
  # Create .a11yscan.yaml in current directory
  a11yscan init

  # Create config file at a specific path
  a11yscan init -o ~/.config/a11yscan/config.yaml

  # Force overwrite existing file
  a11yscan init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
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

	content, err := config.NewFile(config.NewConfig()).Template()
	if err != nil {
		return err
	}

	if force {
		err = fsutil.WriteAtomic(outputPath, content)
	} else {
		err = fsutil.WriteNew(outputPath, content)
	}
	if errors.Is(err, fsutil.ErrExist) {
		return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
	}
	if err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure settings such as:")
	fmt.Fprintln(out, "  - The Chromium executable and headless mode")
	fmt.Fprintln(out, "  - Where reports are written")
	fmt.Fprintln(out, "  - Scan history recording")

	return nil
}
