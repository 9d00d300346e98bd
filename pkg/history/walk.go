// Package history traverses and filters the commit graph.
package history

import (
	"fmt"

	"github.com/odvcencio/strata/pkg/object"
)

// Entry pairs a visited commit with its address.
type Entry struct {
	Hash   object.Hash
	Commit *object.Commit
}

// WalkOptions tunes a commit-graph traversal.
type WalkOptions struct {
	// Limit stops the walk after this many commits. Zero or negative
	// means unlimited.
	Limit int

	// FirstParentOnly follows only the first parent of each commit,
	// producing the mainline of a merge-heavy history.
	FirstParentOnly bool
}

// Walk traverses parent edges breadth-first starting at start. A
// visited set keyed by address guarantees each commit is emitted at
// most once even when diamond-shaped histories reach a shared
// ancestor along several paths, and makes termination unconditional.
func Walk(s *object.Store, start object.Hash, opts WalkOptions) ([]Entry, error) {
	start = object.NormalizeHash(start)
	visited := make(map[object.Hash]struct{})
	queue := []object.Hash{start}

	var out []Entry
	for len(queue) > 0 {
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
		h := queue[0]
		queue = queue[1:]
		if _, ok := visited[h]; ok {
			continue
		}
		visited[h] = struct{}{}

		c, err := s.ReadCommit(h)
		if err != nil {
			return nil, fmt.Errorf("walk commits at %s: %w", h, err)
		}
		out = append(out, Entry{Hash: h, Commit: c})

		parents := c.Parents
		if opts.FirstParentOnly && len(parents) > 1 {
			parents = parents[:1]
		}
		for _, p := range parents {
			p = object.NormalizeHash(p)
			if _, ok := visited[p]; !ok {
				queue = append(queue, p)
			}
		}
	}
	return out, nil
}
