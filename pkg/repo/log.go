package repo

import (
	"errors"
	"fmt"
	"time"

	"github.com/odvcencio/strata/pkg/history"
)

// LogOptions tunes a history listing. Filters apply after the walk, in
// the order author, message, date.
type LogOptions struct {
	Limit           int
	FirstParentOnly bool
	Author          string
	Message         string
	Since           time.Time
	Until           time.Time
}

// Log walks the commit graph from HEAD. A repository with no commits
// yields an empty listing, not an error.
func (r *Repo) Log(opts LogOptions) ([]history.Entry, error) {
	head, err := r.Head()
	if errors.Is(err, ErrNoRef) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}

	entries, err := history.Walk(r.Store, head, history.WalkOptions{
		Limit:           opts.Limit,
		FirstParentOnly: opts.FirstParentOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}

	if opts.Author != "" {
		if entries, err = history.ByAuthor(entries, opts.Author); err != nil {
			return nil, fmt.Errorf("log: %w", err)
		}
	}
	if opts.Message != "" {
		if entries, err = history.ByMessage(entries, opts.Message); err != nil {
			return nil, fmt.Errorf("log: %w", err)
		}
	}
	if !opts.Since.IsZero() || !opts.Until.IsZero() {
		entries = history.ByDateRange(entries, opts.Since, opts.Until)
	}
	return entries, nil
}
