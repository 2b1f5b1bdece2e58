package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fyrsmithlabs/lswatch/internal/natsls"
	"github.com/fyrsmithlabs/lswatch/pkg/listing"
	"github.com/spf13/cobra"
)

func newPutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "put DIR JSON",
		Short: "Publish the listing of a directory",
		Long: `Publish the listing of DIR. JSON maps each child name to its list of
descriptors; "-" reads it from stdin.

Examples:
  lswatch put / '{"lights": [{"behaviour": "DIRECTORY"}]}'
  lswatch put lights/ - < lights.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := readListing(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}

			sess, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), a.opTimeout())
			defer cancel()

			key := directoryKey(args[0])
			rev, err := natsls.NewStore(sess.kv, a.natsOptions()...).PutListing(ctx, key, dir)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "put %s (revision %d)\n", displayKey(key), rev)
			return err
		},
	}
}

func readListing(stdin io.Reader, arg string) (listing.Directory, error) {
	data := []byte(arg)
	if arg == "-" {
		var err error
		if data, err = io.ReadAll(stdin); err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	}
	dir, err := natsls.DecodeDirectory(data)
	if err != nil {
		return nil, err
	}
	if dir == nil {
		return nil, errors.New("listing is null, use rm to remove a directory")
	}
	return dir, nil
}
