package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/strata/pkg/diff"
	"github.com/odvcencio/strata/pkg/object"
	"github.com/odvcencio/strata/pkg/repo"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <commit> <commit>",
		Short: "Show entry-level changes between two commits' trees",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			before, err := readCommitTree(r, object.Hash(args[0]))
			if err != nil {
				return err
			}
			after, err := readCommitTree(r, object.Hash(args[1]))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, change := range diff.Trees(before, after) {
				switch change.Type {
				case diff.Added:
					fmt.Fprintf(out, "A %s %s\n", change.Name, change.After.Hash)
				case diff.Removed:
					fmt.Fprintf(out, "D %s %s\n", change.Name, change.Before.Hash)
				case diff.Modified:
					fmt.Fprintf(out, "M %s %s -> %s\n", change.Name, change.Before.Hash, change.After.Hash)
				}
			}
			return nil
		},
	}
}

func readCommitTree(r *repo.Repo, h object.Hash) (*object.Tree, error) {
	c, err := r.Store.ReadCommit(h)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", h, err)
	}
	tree, err := r.Store.ReadTree(c.Tree)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", h, err)
	}
	return tree, nil
}
