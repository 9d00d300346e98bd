package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/strata/pkg/merge"
	"github.com/odvcencio/strata/pkg/object"
)

func newMergeCmd() *cobra.Command {
	var strategyName string

	cmd := &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge another branch's tree into the current branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := parseStrategy(strategyName)
			if err != nil {
				return err
			}

			r, err := openRepo()
			if err != nil {
				return err
			}

			head, err := r.Head()
			if err != nil {
				return fmt.Errorf("merge: %w", err)
			}
			other, err := r.ReadRef("refs/heads/" + args[0])
			if err != nil {
				return fmt.Errorf("merge: branch %q: %w", args[0], err)
			}

			ours, err := readCommitTree(r, head)
			if err != nil {
				return err
			}
			theirs, err := readCommitTree(r, other)
			if err != nil {
				return err
			}

			tree, err := merge.Trees(ours, theirs, strategy)
			if err != nil {
				return err
			}
			treeHash, err := r.Store.WriteTree(tree)
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("merge branch %s (%s)\n", args[0], strategy)
			h, err := r.CreateCommit(treeHash, []object.Hash{head, other}, msg, nil)
			if err != nil {
				return err
			}

			branch, ok := r.CurrentBranch()
			if !ok {
				return fmt.Errorf("merge: HEAD is detached")
			}
			if err := r.UpdateRef("refs/heads/"+branch, h); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s", branch, shortHash(h), msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategyName, "strategy", "union", "collision strategy: ours, theirs, or union")

	return cmd
}

func parseStrategy(name string) (merge.Strategy, error) {
	switch name {
	case "ours":
		return merge.Ours, nil
	case "theirs":
		return merge.Theirs, nil
	case "union":
		return merge.Union, nil
	default:
		return 0, fmt.Errorf("unknown merge strategy %q", name)
	}
}
