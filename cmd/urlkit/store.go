package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/urlkit/internal/errors"
	"github.com/vango-dev/urlkit/internal/store"
)

func storeCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the configured storage backend",
		Long: `List, print and remove the objects batch jobs read and write. Keys are
resolved the same way as for 'urlkit batch'.`,
	}

	cmd.AddCommand(
		storeListCmd(root),
		storeCatCmd(root),
		storeRemoveCmd(root),
	)

	return cmd
}

// openStore loads urlkit.json and opens its storage backend.
func (o *rootOptions) openStore(cmd *cobra.Command) (store.Store, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cmd.Context(), cfg)
}

func storeListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "ls [prefix]",
		Short:   "List object keys",
		Example: `  urlkit store ls out/`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return errors.New("U080").
					WithDetail(fmt.Sprintf("ls takes at most one prefix, got %d", len(args)))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := root.openStore(cmd)
			if err != nil {
				return err
			}
			var prefix string
			if len(args) == 1 {
				prefix = args[0]
			}
			keys, err := st.List(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, key := range keys {
				fmt.Fprintln(w, key)
			}
			return nil
		},
	}
}

func storeCatCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <key>",
		Short: "Print an object",
		Args:  exactArgs(1, "a key"),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := root.openStore(cmd)
			if err != nil {
				return err
			}
			rc, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer rc.Close()
			if _, err := io.Copy(cmd.OutOrStdout(), rc); err != nil {
				return errors.New("U061").Wrap(err)
			}
			return nil
		},
	}
}

func storeRemoveCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <key>",
		Short: "Remove an object",
		Args:  exactArgs(1, "a key"),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := root.openStore(cmd)
			if err != nil {
				return err
			}
			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Removed %s", args[0])
			return nil
		},
	}
}
