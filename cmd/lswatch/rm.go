package main

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/lswatch/internal/natsls"
	"github.com/spf13/cobra"
)

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm DIR",
		Short: "Remove the listing of a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), a.opTimeout())
			defer cancel()

			key := directoryKey(args[0])
			if err := natsls.NewStore(sess.kv, a.natsOptions()...).DeleteListing(ctx, key); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", displayKey(key))
			return err
		},
	}
}
