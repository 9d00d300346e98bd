package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/strata/pkg/repo"
)

func newCommitCmd() *cobra.Command {
	var message string
	var signKey string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Snapshot the working directory and record a commit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(message) == "" {
				return fmt.Errorf("commit message cannot be empty; use -m")
			}
			if !strings.HasSuffix(message, "\n") {
				message += "\n"
			}

			r, err := openRepo()
			if err != nil {
				return err
			}

			var signer repo.CommitSigner
			if signKey != "" {
				signer, err = repo.NewSSHSigner(signKey)
				if err != nil {
					return err
				}
			}

			h, err := r.Commit(message, signer)
			if err != nil {
				return err
			}

			branch, _ := r.CurrentBranch()
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s", branch, shortHash(h), message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&signKey, "sign-key", "", "path to an SSH private key used to sign the commit")

	return cmd
}
