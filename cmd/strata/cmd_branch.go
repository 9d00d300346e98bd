package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newBranchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "branch [name]",
		Short: "List branches, or create one at the current HEAD",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				head, err := r.Head()
				if err != nil {
					return fmt.Errorf("cannot resolve HEAD: %w", err)
				}
				return r.UpdateRef("refs/heads/"+args[0], head)
			}

			refs, err := r.ListRefs("heads")
			if err != nil {
				return err
			}
			names := make([]string, 0, len(refs))
			for name := range refs {
				names = append(names, strings.TrimPrefix(name, "heads/"))
			}
			sort.Strings(names)

			current, _ := r.CurrentBranch()
			out := cmd.OutOrStdout()
			for _, b := range names {
				if b == current {
					fmt.Fprintf(out, "* %s\n", b)
				} else {
					fmt.Fprintf(out, "  %s\n", b)
				}
			}
			return nil
		},
	}
}
