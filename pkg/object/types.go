package object

import (
	"fmt"
	"strings"
)

// Hash is a 40-character hex-encoded SHA-1 digest. Hashes compare
// case-insensitively; NormalizeHash lowercases on entry so internal
// comparisons can stay byte-wise.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// Mode is a Git-compatible tree entry mode string. The mode determines
// the kind of the referenced object.
type Mode string

const (
	ModeDir        Mode = "40000"
	ModeFile       Mode = "100644"
	ModeExecutable Mode = "100755"
	ModeSymlink    Mode = "120000"
	ModeSubmodule  Mode = "160000"
)

// Valid reports whether m is one of the closed set of entry modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeDir, ModeFile, ModeExecutable, ModeSymlink, ModeSubmodule:
		return true
	}
	return false
}

// RefType returns the object kind an entry with this mode points at:
// directories reference trees, submodule links reference commits, and
// every file-like mode references a blob.
func (m Mode) RefType() ObjectType {
	switch m {
	case ModeDir:
		return TypeTree
	case ModeSubmodule:
		return TypeCommit
	default:
		return TypeBlob
	}
}

// Object is the closed union of storable values: *Blob, *Tree, *Commit.
type Object interface {
	Type() ObjectType
}

// Blob holds raw file data, verbatim. Zero-length content is valid.
type Blob struct {
	Data []byte
}

func (b *Blob) Type() ObjectType { return TypeBlob }

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Mode Mode
	Name string
	Hash Hash
}

// Tree is a collection of named entries. Entries may be added in any
// order; serialization always sorts by name so the address is
// insertion-order independent.
type Tree struct {
	Entries []TreeEntry
}

func (t *Tree) Type() ObjectType { return TypeTree }

// Add appends an entry after validating its name, mode, and hash, and
// rejecting duplicate names.
func (t *Tree) Add(mode Mode, name string, h Hash) error {
	if err := validateEntryName(name); err != nil {
		return err
	}
	if !mode.Valid() {
		return fmt.Errorf("tree entry %q: unknown mode %q: %w", name, mode, ErrFormat)
	}
	h = NormalizeHash(h)
	if !ValidHash(h) {
		return fmt.Errorf("tree entry %q: invalid hash %q: %w", name, h, ErrFormat)
	}
	for _, e := range t.Entries {
		if e.Name == name {
			return fmt.Errorf("tree entry %q: %w", name, ErrDuplicateEntry)
		}
	}
	t.Entries = append(t.Entries, TreeEntry{Mode: mode, Name: name, Hash: h})
	return nil
}

// Find returns the entry with the given name.
func (t *Tree) Find(name string) (TreeEntry, bool) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return TreeEntry{}, false
}

func validateEntryName(name string) error {
	if name == "" {
		return fmt.Errorf("tree entry: empty name: %w", ErrFormat)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("tree entry %q: reserved name: %w", name, ErrFormat)
	}
	if strings.ContainsAny(name, "/\x00") {
		return fmt.Errorf("tree entry %q: name contains separator: %w", name, ErrFormat)
	}
	return nil
}

// Person identifies an author or committer together with the moment of
// the action: Unix timestamp plus a timezone offset string like "+0000".
type Person struct {
	Name     string
	Email    string
	When     int64
	Timezone string
}

// String renders the canonical wire form: Name <email> timestamp tz.
func (p Person) String() string {
	return fmt.Sprintf("%s <%s> %d %s", p.Name, p.Email, p.When, p.Timezone)
}

// Header is one commit extension header. Headers round-trip losslessly
// through encode/decode, preserving order and multi-line values.
type Header struct {
	Key   string
	Value string
}

// HeaderSignature is the extension header carrying a commit signature.
const HeaderSignature = "signature"

// Commit records a revision: a tree snapshot, parent links, authorship,
// optional extension headers, and a free-form message.
type Commit struct {
	Tree      Hash
	Parents   []Hash
	Author    Person
	Committer Person
	Headers   []Header
	Message   string
}

func (c *Commit) Type() ObjectType { return TypeCommit }

// Header returns the value of the first extension header with the
// given key.
func (c *Commit) Header(key string) (string, bool) {
	for _, h := range c.Headers {
		if h.Key == key {
			return h.Value, true
		}
	}
	return "", false
}

// SetHeader replaces the first header with the given key, or appends
// one if absent.
func (c *Commit) SetHeader(key, value string) {
	for i, h := range c.Headers {
		if h.Key == key {
			c.Headers[i].Value = value
			return
		}
	}
	c.Headers = append(c.Headers, Header{Key: key, Value: value})
}
