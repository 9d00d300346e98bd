package history

import (
	"fmt"
	"regexp"
	"time"
)

// Post-traversal filters. Each is a pure function over an
// already-decoded commit sequence; callers chain them in whatever
// order they were asked for.

// ByAuthor keeps commits whose author line (name <email> form)
// matches the pattern.
func ByAuthor(entries []Entry, pattern string) ([]Entry, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("author filter: %w", err)
	}
	var out []Entry
	for _, e := range entries {
		author := fmt.Sprintf("%s <%s>", e.Commit.Author.Name, e.Commit.Author.Email)
		if re.MatchString(author) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ByMessage keeps commits whose message matches the pattern.
func ByMessage(entries []Entry, pattern string) ([]Entry, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("message filter: %w", err)
	}
	var out []Entry
	for _, e := range entries {
		if re.MatchString(e.Commit.Message) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ByDateRange keeps commits whose author timestamp falls within
// [from, to]. A zero time leaves that bound open.
func ByDateRange(entries []Entry, from, to time.Time) []Entry {
	var out []Entry
	for _, e := range entries {
		when := time.Unix(e.Commit.Author.When, 0)
		if !from.IsZero() && when.Before(from) {
			continue
		}
		if !to.IsZero() && when.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out
}
