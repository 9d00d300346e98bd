package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/strata/pkg/object"
	"github.com/odvcencio/strata/pkg/repo"
)

func newVerifyCmd() *cobra.Command {
	var checkSignatures bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check every stored object against its address",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			addrs, err := r.Store.Addresses()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			bad := 0
			for _, h := range addrs {
				o, err := r.Store.Read(h)
				if err != nil {
					bad++
					fmt.Fprintf(out, "corrupt %s: %v\n", h, err)
					continue
				}

				if !checkSignatures {
					continue
				}
				c, ok := o.(*object.Commit)
				if !ok {
					continue
				}
				pub, err := repo.VerifyCommit(c)
				switch {
				case errors.Is(err, repo.ErrUnsigned):
				case err != nil:
					bad++
					fmt.Fprintf(out, "bad signature %s: %v\n", h, err)
				default:
					fmt.Fprintf(out, "signed %s: %s\n", h, pub.Type())
				}
			}

			if bad > 0 {
				return fmt.Errorf("verify: %d of %d objects failed", bad, len(addrs))
			}
			fmt.Fprintf(out, "verified %d objects\n", len(addrs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkSignatures, "signatures", false, "also verify commit signature headers")

	return cmd
}
