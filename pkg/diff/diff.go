// Package diff computes structural differences between tree objects.
package diff

import (
	"sort"

	"github.com/odvcencio/strata/pkg/object"
)

// ChangeType classifies what happened to an entry between two trees.
type ChangeType int

const (
	Added    ChangeType = iota // Entry exists only in the after tree.
	Removed                    // Entry exists only in the before tree.
	Modified                   // Entry exists in both with different addresses.
)

func (c ChangeType) String() string {
	switch c {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	default:
		return "unknown"
	}
}

// Change records a single entry-level change between two trees.
type Change struct {
	Type   ChangeType
	Name   string
	Before *object.TreeEntry // nil for Added.
	After  *object.TreeEntry // nil for Removed.
}

// Trees compares two trees entry by entry, in ascending name order.
// A nil tree is treated as empty. The result is empty exactly when
// the trees are structurally identical. An entry counts as modified
// when its address differs; a mode change with the same address is
// also a modification, since the entries are no longer interchangeable.
func Trees(before, after *object.Tree) []Change {
	beforeMap := entryMap(before)
	afterMap := entryMap(after)

	names := make([]string, 0, len(beforeMap)+len(afterMap))
	seen := make(map[string]bool, len(beforeMap)+len(afterMap))
	collect := func(m map[string]object.TreeEntry) {
		for name := range m {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	collect(beforeMap)
	collect(afterMap)
	sort.Strings(names)

	var changes []Change
	for _, name := range names {
		b, inBefore := beforeMap[name]
		a, inAfter := afterMap[name]
		switch {
		case inBefore && !inAfter:
			b := b
			changes = append(changes, Change{Type: Removed, Name: name, Before: &b})
		case !inBefore && inAfter:
			a := a
			changes = append(changes, Change{Type: Added, Name: name, After: &a})
		case b.Hash != a.Hash || b.Mode != a.Mode:
			b, a := b, a
			changes = append(changes, Change{Type: Modified, Name: name, Before: &b, After: &a})
		}
	}
	return changes
}

func entryMap(t *object.Tree) map[string]object.TreeEntry {
	if t == nil {
		return nil
	}
	m := make(map[string]object.TreeEntry, len(t.Entries))
	for _, e := range t.Entries {
		m[e.Name] = e
	}
	return m
}
