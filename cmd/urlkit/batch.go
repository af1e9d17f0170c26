package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/urlkit/internal/batch"
)

func batchCmd(root *rootOptions) *cobra.Command {
	var (
		flags       codecFlags
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch <src> <dst>",
		Short: "Decompose a list of URLs into JSON Lines",
		Long: `Read newline-separated URLs from src and write one JSON object per URL
to dst, in input order. Blank lines and lines starting with "#" are skipped.

Keys are resolved against the configured storage backend: storage.dir for
the file backend, storage.bucket and storage.prefix for s3.`,
		Example: `  urlkit batch urls.txt segments.jsonl
  urlkit batch inbox/urls.txt out/urls.jsonl --concurrency 8`,
		Args: exactArgs(2, "a source key", "a destination key"),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(root)
			if err != nil {
				return err
			}

			st, err := root.openStore(cmd)
			if err != nil {
				return err
			}

			report, err := batch.Run(cmd.Context(), st, args[0], args[1], batch.Options{
				Concurrency: concurrency,
				Codec:       opts,
				Logger:      root.logger(cmd),
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			success(w, "Decomposed %d URLs", report.Total)
			info(w, "%d absolute, %d relative", report.Absolute, report.Relative)
			info(w, "Wrote %s", args[1])
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "URLs decomposed at once (default GOMAXPROCS)")

	return cmd
}
