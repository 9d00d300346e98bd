package object

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Canonical serialization. Every object's bytes are the frame
// "<kind> <payload-length>\0" followed by the kind-specific payload;
// the object's address is the SHA-1 of exactly these bytes.

// Frame prepends the canonical header to a payload.
func Frame(objType ObjectType, payload []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", objType, len(payload))
	out := make([]byte, 0, len(header)+len(payload))
	out = append(out, header...)
	return append(out, payload...)
}

// ParseFrame splits canonical bytes into kind and payload, validating
// the header and the declared length.
func ParseFrame(data []byte) (ObjectType, []byte, error) {
	nul := bytes.IndexByte(data, 0)
	if nul < 0 {
		return "", nil, fmt.Errorf("parse frame: missing NUL terminator: %w", ErrFormat)
	}
	header := string(data[:nul])
	payload := data[nul+1:]

	kind, sizeStr, ok := strings.Cut(header, " ")
	if !ok {
		return "", nil, fmt.Errorf("parse frame: invalid header %q: %w", header, ErrFormat)
	}
	objType := ObjectType(kind)
	switch objType {
	case TypeBlob, TypeTree, TypeCommit:
	default:
		return "", nil, fmt.Errorf("parse frame: kind %q: %w", kind, ErrUnsupportedType)
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 0 {
		return "", nil, fmt.Errorf("parse frame: invalid length %q: %w", sizeStr, ErrFormat)
	}
	if len(payload) != size {
		return "", nil, fmt.Errorf("parse frame: declared %d actual %d: %w", size, len(payload), ErrSizeMismatch)
	}
	return objType, payload, nil
}

// Marshal returns the full canonical bytes of o, frame included.
func Marshal(o Object) ([]byte, error) {
	payload, err := MarshalPayload(o)
	if err != nil {
		return nil, err
	}
	return Frame(o.Type(), payload), nil
}

// MarshalPayload serializes the kind-specific payload of o.
func MarshalPayload(o Object) ([]byte, error) {
	switch v := o.(type) {
	case *Blob:
		return MarshalBlob(v), nil
	case *Tree:
		return MarshalTree(v)
	case *Commit:
		return MarshalCommit(v)
	default:
		return nil, fmt.Errorf("marshal %T: %w", o, ErrUnsupportedType)
	}
}

// Unmarshal parses canonical bytes into a typed object.
func Unmarshal(data []byte) (Object, error) {
	objType, payload, err := ParseFrame(data)
	if err != nil {
		return nil, err
	}
	switch objType {
	case TypeBlob:
		return UnmarshalBlob(payload)
	case TypeTree:
		return UnmarshalTree(payload)
	case TypeCommit:
		return UnmarshalCommit(payload)
	default:
		return nil, fmt.Errorf("unmarshal kind %q: %w", objType, ErrUnsupportedType)
	}
}

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob payload (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes a blob payload.
func UnmarshalBlob(payload []byte) (*Blob, error) {
	out := make([]byte, len(payload))
	copy(out, payload)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

// MarshalTree serializes a tree payload. Entries are sorted by name so
// the output is independent of insertion order. Each entry is
// "<mode> <name>\0" followed by the 20 raw digest bytes.
func MarshalTree(tr *Tree) ([]byte, error) {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	seen := make(map[string]struct{}, len(sorted))
	for _, e := range sorted {
		if err := validateEntryName(e.Name); err != nil {
			return nil, err
		}
		if _, dup := seen[e.Name]; dup {
			return nil, fmt.Errorf("tree entry %q: %w", e.Name, ErrDuplicateEntry)
		}
		seen[e.Name] = struct{}{}
		if !e.Mode.Valid() {
			return nil, fmt.Errorf("tree entry %q: unknown mode %q: %w", e.Name, e.Mode, ErrFormat)
		}
		raw, err := hex.DecodeString(string(NormalizeHash(e.Hash)))
		if err != nil || len(raw) != HashHexLen/2 {
			return nil, fmt.Errorf("tree entry %q: invalid hash %q: %w", e.Name, e.Hash, ErrFormat)
		}
		fmt.Fprintf(&buf, "%s %s\x00", e.Mode, e.Name)
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

// UnmarshalTree parses a tree payload.
func UnmarshalTree(payload []byte) (*Tree, error) {
	tr := &Tree{}
	seen := make(map[string]struct{})
	rest := payload
	for len(rest) > 0 {
		sp := bytes.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("unmarshal tree: truncated entry: %w", ErrFormat)
		}
		nul := bytes.IndexByte(rest[sp:], 0)
		if nul < 0 {
			return nil, fmt.Errorf("unmarshal tree: entry missing NUL: %w", ErrFormat)
		}
		nul += sp

		mode := Mode(rest[:sp])
		if !mode.Valid() {
			return nil, fmt.Errorf("unmarshal tree: unknown mode %q: %w", mode, ErrFormat)
		}
		name := string(rest[sp+1 : nul])
		if err := validateEntryName(name); err != nil {
			return nil, err
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("unmarshal tree: entry %q: %w", name, ErrDuplicateEntry)
		}
		seen[name] = struct{}{}

		if len(rest) < nul+1+HashHexLen/2 {
			return nil, fmt.Errorf("unmarshal tree: entry %q: truncated digest: %w", name, ErrFormat)
		}
		h := Hash(hex.EncodeToString(rest[nul+1 : nul+1+HashHexLen/2]))
		tr.Entries = append(tr.Entries, TreeEntry{Mode: mode, Name: name, Hash: h})
		rest = rest[nul+1+HashHexLen/2:]
	}
	return tr, nil
}

// ---------------------------------------------------------------------------
// Commit
// ---------------------------------------------------------------------------

// MarshalCommit serializes a commit payload:
//
//	tree H
//	parent H     (zero or more)
//	author Name <email> ts tz
//	committer Name <email> ts tz
//	key value    (extension headers, in order; continuation lines
//	              carry a leading space)
//
//	message
func MarshalCommit(c *Commit) ([]byte, error) {
	tree := NormalizeHash(c.Tree)
	if !ValidHash(tree) {
		return nil, fmt.Errorf("marshal commit: invalid tree hash %q: %w", c.Tree, ErrFormat)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", tree)
	for _, p := range c.Parents {
		p = NormalizeHash(p)
		if !ValidHash(p) {
			return nil, fmt.Errorf("marshal commit: invalid parent hash %q: %w", p, ErrFormat)
		}
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	if err := validatePerson("author", c.Author); err != nil {
		return nil, err
	}
	if err := validatePerson("committer", c.Committer); err != nil {
		return nil, err
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "committer %s\n", c.Committer)

	for _, h := range c.Headers {
		if h.Key == "" || strings.ContainsAny(h.Key, " \n") {
			return nil, fmt.Errorf("marshal commit: invalid header key %q: %w", h.Key, ErrFormat)
		}
		switch h.Key {
		case "tree", "parent", "author", "committer":
			return nil, fmt.Errorf("marshal commit: reserved header key %q: %w", h.Key, ErrFormat)
		}
		lines := strings.Split(h.Value, "\n")
		fmt.Fprintf(&buf, "%s %s\n", h.Key, lines[0])
		for _, cont := range lines[1:] {
			fmt.Fprintf(&buf, " %s\n", cont)
		}
	}

	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes(), nil
}

// UnmarshalCommit parses a commit payload.
func UnmarshalCommit(payload []byte) (*Commit, error) {
	idx := bytes.Index(payload, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: missing header/message separator: %w", ErrFormat)
	}
	header := string(payload[:idx])
	message := string(payload[idx+2:])

	c := &Commit{Message: message}
	var (
		haveTree, haveAuthor, haveCommitter bool
		lastExt                             = -1
	)
	for _, line := range strings.Split(header, "\n") {
		if strings.HasPrefix(line, " ") {
			// Continuation of a multi-line extension header value.
			if lastExt < 0 {
				return nil, fmt.Errorf("unmarshal commit: stray continuation line %q: %w", line, ErrFormat)
			}
			c.Headers[lastExt].Value += "\n" + line[1:]
			continue
		}
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: malformed header line %q: %w", line, ErrFormat)
		}
		switch key {
		case "tree":
			if haveTree {
				return nil, fmt.Errorf("unmarshal commit: duplicate tree header: %w", ErrFormat)
			}
			h := NormalizeHash(Hash(val))
			if !ValidHash(h) {
				return nil, fmt.Errorf("unmarshal commit: invalid tree hash %q: %w", val, ErrFormat)
			}
			c.Tree = h
			haveTree = true
		case "parent":
			h := NormalizeHash(Hash(val))
			if !ValidHash(h) {
				return nil, fmt.Errorf("unmarshal commit: invalid parent hash %q: %w", val, ErrFormat)
			}
			c.Parents = append(c.Parents, h)
		case "author":
			if haveAuthor {
				return nil, fmt.Errorf("unmarshal commit: duplicate author header: %w", ErrFormat)
			}
			p, err := ParsePerson(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: author: %w", err)
			}
			c.Author = p
			haveAuthor = true
		case "committer":
			if haveCommitter {
				return nil, fmt.Errorf("unmarshal commit: duplicate committer header: %w", ErrFormat)
			}
			p, err := ParsePerson(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: committer: %w", err)
			}
			c.Committer = p
			haveCommitter = true
		default:
			c.Headers = append(c.Headers, Header{Key: key, Value: val})
			lastExt = len(c.Headers) - 1
		}
	}

	if !haveTree {
		return nil, fmt.Errorf("unmarshal commit: missing tree header: %w", ErrFormat)
	}
	if !haveAuthor || !haveCommitter {
		return nil, fmt.Errorf("unmarshal commit: missing author or committer: %w", ErrFormat)
	}
	return c, nil
}

// ParsePerson parses "Name <email> timestamp timezone".
func ParsePerson(s string) (Person, error) {
	lt := strings.LastIndex(s, "<")
	gt := strings.LastIndex(s, ">")
	if lt < 0 || gt < lt {
		return Person{}, fmt.Errorf("person %q: missing email brackets: %w", s, ErrFormat)
	}
	name := strings.TrimRight(s[:lt], " ")
	email := s[lt+1 : gt]

	fields := strings.Fields(s[gt+1:])
	if len(fields) != 2 {
		return Person{}, fmt.Errorf("person %q: missing timestamp or timezone: %w", s, ErrFormat)
	}
	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Person{}, fmt.Errorf("person %q: bad timestamp %q: %w", s, fields[0], ErrFormat)
	}
	if !validTimezone(fields[1]) {
		return Person{}, fmt.Errorf("person %q: bad timezone %q: %w", s, fields[1], ErrFormat)
	}
	return Person{Name: name, Email: email, When: ts, Timezone: fields[1]}, nil
}

func validatePerson(field string, p Person) error {
	if strings.ContainsAny(p.Name, "<>\n") || strings.ContainsAny(p.Email, "<> \n") {
		return fmt.Errorf("marshal commit: invalid %s identity %q <%s>: %w", field, p.Name, p.Email, ErrFormat)
	}
	if !validTimezone(p.Timezone) {
		return fmt.Errorf("marshal commit: invalid %s timezone %q: %w", field, p.Timezone, ErrFormat)
	}
	return nil
}

func validTimezone(tz string) bool {
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return false
	}
	for _, c := range tz[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
