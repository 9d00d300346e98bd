package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/strata/pkg/object"
	"github.com/odvcencio/strata/pkg/repo"
)

func newLogCmd() *cobra.Command {
	var (
		oneline     bool
		limit       int
		firstParent bool
		author      string
		message     string
		since       string
		until       string
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show commit history",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			opts := repo.LogOptions{
				Limit:           limit,
				FirstParentOnly: firstParent,
				Author:          author,
				Message:         message,
			}
			if opts.Since, err = parseLogDate(since); err != nil {
				return fmt.Errorf("--since: %w", err)
			}
			if opts.Until, err = parseLogDate(until); err != nil {
				return fmt.Errorf("--until: %w", err)
			}

			entries, err := r.Log(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "no commits yet")
				return nil
			}

			for _, entry := range entries {
				c := entry.Commit
				if oneline {
					fmt.Fprintf(out, "%s %s", shortHash(entry.Hash), c.Message)
					continue
				}
				fmt.Fprintf(out, "commit %s\n", entry.Hash)
				fmt.Fprintf(out, "Author: %s <%s>\n", c.Author.Name, c.Author.Email)
				fmt.Fprintf(out, "Date:   %s\n", time.Unix(c.Author.When, 0).UTC().Format("2006-01-02 15:04:05"))
				fmt.Fprintf(out, "\n    %s\n", c.Message)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of commits to show (0 = all)")
	cmd.Flags().BoolVar(&firstParent, "first-parent", false, "follow only the first parent of merge commits")
	cmd.Flags().StringVar(&author, "author", "", "show only commits whose author matches this pattern")
	cmd.Flags().StringVar(&message, "grep", "", "show only commits whose message matches this pattern")
	cmd.Flags().StringVar(&since, "since", "", "show only commits after this date (2006-01-02)")
	cmd.Flags().StringVar(&until, "until", "", "show only commits before this date (2006-01-02)")

	return cmd
}

func parseLogDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

func shortHash(h object.Hash) string {
	if len(h) > 8 {
		return string(h[:8])
	}
	return string(h)
}
