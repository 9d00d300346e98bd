package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odvcencio/strata/pkg/repo"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:   "strata",
		Short: "Content-addressable object storage with commit history",
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log store operations")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newHashObjectCmd())
	root.AddCommand(newCatFileCmd())
	root.AddCommand(newCommitCmd())
	root.AddCommand(newLogCmd())
	root.AddCommand(newDiffCmd())
	root.AddCommand(newBranchCmd())
	root.AddCommand(newMergeCmd())
	root.AddCommand(newVerifyCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openRepo opens the repository containing the working directory,
// attaching a debug logger when --verbose is set.
func openRepo() (*repo.Repo, error) {
	if !verbose {
		return repo.Open(".")
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return repo.Open(".", repo.WithLogger(log))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "strata 0.1.0-dev")
		},
	}
}
