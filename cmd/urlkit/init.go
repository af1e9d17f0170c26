package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/urlkit/internal/config"
	"github.com/vango-dev/urlkit/internal/errors"
)

func initCmd(root *rootOptions) *cobra.Command {
	var (
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default urlkit.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			switch format {
			case "json":
				name = config.ConfigFileName
			case "yaml", "yml":
				name = config.YAMLConfigFileName
			default:
				return errors.New("U080").
					WithDetail("unknown format " + format).
					WithSuggestion("Use --format json or --format yaml")
			}

			if config.Exists(root.dir) && !force {
				return errors.Newf(errors.CategoryCLI, "a config file already exists in %s", root.dir).
					WithSuggestion("Use --force to overwrite it")
			}
			if err := os.MkdirAll(root.dir, 0755); err != nil {
				return errors.New("U021").Wrap(err)
			}

			abs, err := filepath.Abs(root.dir)
			if err != nil {
				return errors.New("U021").Wrap(err)
			}
			cfg := config.New()
			cfg.Name = filepath.Base(abs)

			path := filepath.Join(root.dir, name)
			if err := cfg.SaveTo(path); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			success(w, "Created %s", path)
			info(w, "Run 'urlkit serve' to start the server")
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Config format: json or yaml")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
