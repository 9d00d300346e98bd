// Package merge combines tree objects under a caller-chosen collision
// strategy.
package merge

import (
	"errors"
	"fmt"
	"sort"

	"github.com/odvcencio/strata/pkg/object"
)

// ErrConflict marks a union merge where both trees carry the same name
// with different content.
var ErrConflict = errors.New("merge conflict")

// Strategy selects the winner when both trees carry the same entry
// name.
type Strategy int

const (
	// Ours keeps the first tree's entry on collision.
	Ours Strategy = iota
	// Theirs keeps the second tree's entry on collision.
	Theirs
	// Union merges disjoint entries and fails with ErrConflict when a
	// shared name resolves to different content. Identical entries
	// merge silently.
	Union
)

func (s Strategy) String() string {
	switch s {
	case Ours:
		return "ours"
	case Theirs:
		return "theirs"
	case Union:
		return "union"
	default:
		return "unknown"
	}
}

// Trees merges two trees into a new tree. Inputs are never mutated; a
// nil tree is treated as empty. Entries in the result are sorted by
// name, matching canonical serialization order.
func Trees(ours, theirs *object.Tree, strategy Strategy) (*object.Tree, error) {
	merged := make(map[string]object.TreeEntry)
	if ours != nil {
		for _, e := range ours.Entries {
			merged[e.Name] = e
		}
	}
	if theirs != nil {
		for _, e := range theirs.Entries {
			existing, collision := merged[e.Name]
			if !collision {
				merged[e.Name] = e
				continue
			}
			switch strategy {
			case Ours:
				// Keep existing.
			case Theirs:
				merged[e.Name] = e
			case Union:
				if existing.Hash != e.Hash || existing.Mode != e.Mode {
					return nil, fmt.Errorf("entry %q: %s vs %s: %w", e.Name, existing.Hash, e.Hash, ErrConflict)
				}
			default:
				return nil, fmt.Errorf("unknown merge strategy %d", strategy)
			}
		}
	}

	out := &object.Tree{Entries: make([]object.TreeEntry, 0, len(merged))}
	for _, e := range merged {
		out.Entries = append(out.Entries, e)
	}
	sort.Slice(out.Entries, func(i, j int) bool {
		return out.Entries[i].Name < out.Entries[j].Name
	})
	return out, nil
}
