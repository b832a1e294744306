package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nao1215/sitecheck/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/sitecheck.yaml
var configTemplate []byte

// errConfigExists is returned when init would replace an existing file.
var errConfigExists = errors.New("configuration file already exists")

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented sitecheck configuration file",
		Long: `Write a configuration file that lists every option with its default
value commented out: ignored directories, reserved sections, glob patterns
and component placeholders.

By default the file is .sitecheck in the current directory. --global writes
it to the per-user location ($XDG_CONFIG_HOME/sitecheck/config.yaml) that
check and watch fall back to when no project file exists.

Examples:
  # Create .sitecheck in current directory
  sitecheck init

  # Create config file at a specific path
  sitecheck init -o site/.sitecheck

  # Create the per-user config file
  sitecheck init --global

  # Print the template instead of writing it
  sitecheck init --stdout

  # Replace an existing file
  sitecheck init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")
	cmd.Flags().BoolP("global", "g", false,
		"Write the per-user config file instead of a project file")
	cmd.Flags().Bool("stdout", false,
		"Print the template to standard output")
	cmd.MarkFlagsMutuallyExclusive("output", "global", "stdout")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	toStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return err
	}
	if toStdout {
		_, err := cmd.OutOrStdout().Write(configTemplate)
		return err
	}

	target, err := initTarget(cmd)
	if err != nil {
		return err
	}
	if err := writeConfigTemplate(target, force); err != nil {
		if errors.Is(err, errConfigExists) {
			return fmt.Errorf("%w: %s (use -f to overwrite)", err, target)
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", target)
	fmt.Fprintln(out, "Uncomment an entry to override its default.")
	return nil
}

// initTarget returns the file init writes to.
func initTarget(cmd *cobra.Command) (string, error) {
	global, err := cmd.Flags().GetBool("global")
	if err != nil {
		return "", err
	}
	if global {
		return filepath.Join(config.XDGConfigDir(), config.XDGConfigFileName), nil
	}
	return cmd.Flags().GetString("output")
}

// writeConfigTemplate writes the template to path, creating parent
// directories. Without force an existing file is left untouched and
// errConfigExists is returned.
func writeConfigTemplate(path string, force bool) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(filepath.Clean(path), flags, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return errConfigExists
		}
		return fmt.Errorf("failed to create configuration file: %w", err)
	}
	if _, err := f.Write(configTemplate); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return f.Close()
}
