package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/carbyne-dev/carbyne/internal/config"
	"github.com/carbyne-dev/carbyne/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default configuration file",
		Long: `Write carbyne.yaml (or carbyne.json with --format=json) holding the
default configuration into dir, or the working directory.

Examples:
  carbyne init
  carbyne init ./demo --format=json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			var name string
			switch format {
			case "yaml":
				name = "carbyne.yaml"
			case "json":
				name = "carbyne.json"
			default:
				return errors.New(errors.CodeConfigInvalid).
					WithDetail("Unknown format " + format).
					WithSuggestion("Use --format=yaml or --format=json")
			}

			if config.Exists(dir) && !force {
				return errors.Newf(errors.CategoryConfig, "A carbyne config already exists in %s", dir).
					WithSuggestion("Use --force to overwrite it")
			}

			path := filepath.Join(dir, name)
			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			success("Created %s", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "File format: yaml or json")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")

	return cmd
}
