package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/lswatch/internal/natsls"
	"github.com/spf13/cobra"
)

func newLsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ls [DIR]",
		Short: "Print a stored directory listing, or every stored directory",
		Long: `Print the listing stored for DIR. Without DIR, print the key of every
stored listing. The root directory is "/".

Examples:
  lswatch ls
  lswatch ls /
  lswatch ls --json lights/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			store := natsls.NewStore(sess.kv, a.natsOptions()...)
			ctx, cancel := context.WithTimeout(cmd.Context(), a.opTimeout())
			defer cancel()
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				keys, err := store.Keys(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(out, keys)
				}
				for _, key := range keys {
					fmt.Fprintln(out, displayKey(key))
				}
				return nil
			}

			key := directoryKey(args[0])
			dir, err := store.GetListing(ctx, key)
			if errors.Is(err, natsls.ErrListingNotFound) {
				return fmt.Errorf("no listing for %s", displayKey(key))
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out, dir)
			}
			_, err = fmt.Fprint(out, formatListing(key, dir))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
