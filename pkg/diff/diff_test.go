package diff

import (
	"testing"

	"github.com/odvcencio/strata/pkg/object"
)

func blobHash(t *testing.T, data string) object.Hash {
	t.Helper()
	return object.HashObject(object.TypeBlob, []byte(data))
}

func buildTree(t *testing.T, entries map[string]object.Hash) *object.Tree {
	t.Helper()
	tr := &object.Tree{}
	for name, h := range entries {
		if err := tr.Add(object.ModeFile, name, h); err != nil {
			t.Fatalf("Add %s: %v", name, err)
		}
	}
	return tr
}

func TestTreesIdentical(t *testing.T) {
	h := blobHash(t, "same")
	a := buildTree(t, map[string]object.Hash{"x.txt": h, "y.txt": h})
	b := buildTree(t, map[string]object.Hash{"y.txt": h, "x.txt": h})

	if changes := Trees(a, b); len(changes) != 0 {
		t.Errorf("identical trees: got %d changes, want 0", len(changes))
	}
}

func TestTreesPartition(t *testing.T) {
	oldHash := blobHash(t, "old")
	newHash := blobHash(t, "new")
	keep := blobHash(t, "keep")

	before := buildTree(t, map[string]object.Hash{
		"changed.txt": oldHash,
		"gone.txt":    oldHash,
		"stable.txt":  keep,
	})
	after := buildTree(t, map[string]object.Hash{
		"changed.txt": newHash,
		"added.txt":   newHash,
		"stable.txt":  keep,
	})

	changes := Trees(before, after)
	if len(changes) != 3 {
		t.Fatalf("changes: got %d, want 3", len(changes))
	}

	// Ascending name order: added.txt, changed.txt, gone.txt.
	if changes[0].Name != "added.txt" || changes[0].Type != Added {
		t.Errorf("changes[0]: got %s %s", changes[0].Type, changes[0].Name)
	}
	if changes[0].Before != nil || changes[0].After == nil {
		t.Error("added change should have only After")
	}
	if changes[1].Name != "changed.txt" || changes[1].Type != Modified {
		t.Errorf("changes[1]: got %s %s", changes[1].Type, changes[1].Name)
	}
	if changes[1].Before == nil || changes[1].After == nil {
		t.Error("modified change should have Before and After")
	}
	if changes[2].Name != "gone.txt" || changes[2].Type != Removed {
		t.Errorf("changes[2]: got %s %s", changes[2].Type, changes[2].Name)
	}
	if changes[2].Before == nil || changes[2].After != nil {
		t.Error("removed change should have only Before")
	}
}

func TestTreesModeChangeIsModification(t *testing.T) {
	h := blobHash(t, "script")
	before := &object.Tree{}
	if err := before.Add(object.ModeFile, "run.sh", h); err != nil {
		t.Fatalf("Add: %v", err)
	}
	after := &object.Tree{}
	if err := after.Add(object.ModeExecutable, "run.sh", h); err != nil {
		t.Fatalf("Add: %v", err)
	}

	changes := Trees(before, after)
	if len(changes) != 1 || changes[0].Type != Modified {
		t.Fatalf("changes: got %v, want one modification", changes)
	}
}

func TestTreesNilIsEmpty(t *testing.T) {
	h := blobHash(t, "only")
	tr := buildTree(t, map[string]object.Hash{"a.txt": h})

	added := Trees(nil, tr)
	if len(added) != 1 || added[0].Type != Added {
		t.Errorf("nil before: got %v", added)
	}
	removed := Trees(tr, nil)
	if len(removed) != 1 || removed[0].Type != Removed {
		t.Errorf("nil after: got %v", removed)
	}
	if changes := Trees(nil, nil); len(changes) != 0 {
		t.Errorf("nil both: got %v", changes)
	}
}
