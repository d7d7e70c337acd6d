package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/plop/internal/config"
	"github.com/vango-dev/plop/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default configuration file",
		Long: `Write plop.yaml (or plop.json) with every setting at its default.

Examples:
  plop init
  plop init ./site --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd, dir, format, force)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "File format (yaml, json)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")

	return cmd
}

func runInit(cmd *cobra.Command, dir, format string, force bool) error {
	var name string
	switch format {
	case "yaml":
		name = config.YAMLConfigFileName
	case "json":
		name = config.ConfigFileName
	default:
		return errors.Newf(errors.CategoryCLI, "unknown format %q", format).
			WithSuggestion("Use --format yaml or --format json")
	}

	if config.Exists(dir) && !force {
		return errors.Newf(errors.CategoryCLI, "%s already holds a configuration", dir).
			WithSuggestion("Pass --force to overwrite it")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.New("E121").Wrap(err)
	}

	path := filepath.Join(dir, name)
	if err := config.New().SaveTo(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
