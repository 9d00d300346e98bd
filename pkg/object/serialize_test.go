package object

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestMarshalBlobVector(t *testing.T) {
	b := &Blob{Data: []byte("hello")}
	got, err := Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := []byte("blob 5\x00hello")
	if !bytes.Equal(got, want) {
		t.Errorf("canonical bytes: got %q, want %q", got, want)
	}
	if h := HashBytes(got); h != "b6fc4c620b67d95f953a5c1c1230aaab5db5a1b0" {
		t.Errorf("address: got %s", h)
	}

	// Trailing-newline variant, the classic git hash-object result.
	b2 := &Blob{Data: []byte("hello\n")}
	h2, err := AddressOf(b2)
	if err != nil {
		t.Fatalf("AddressOf: %v", err)
	}
	if h2 != "ce013625030ba8dba906f756967f9e9ca394464a" {
		t.Errorf("address: got %s", h2)
	}
}

func TestEmptyTreeVector(t *testing.T) {
	tr := &Tree{}
	got, err := Marshal(tr)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(got, []byte("tree 0\x00")) {
		t.Errorf("canonical bytes: got %q", got)
	}
	if h := HashBytes(got); h != "4b825dc642cb6eb9a060e54bf8d69288fbee4904" {
		t.Errorf("address: got %s", h)
	}
}

func TestEmptyBlobRoundTrip(t *testing.T) {
	b := &Blob{}
	data, err := Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	o, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got, ok := o.(*Blob)
	if !ok {
		t.Fatalf("Unmarshal: got %T, want *Blob", o)
	}
	if len(got.Data) != 0 {
		t.Errorf("Data: got %q, want empty", got.Data)
	}
}

func TestTreeOrderIndependentAddressing(t *testing.T) {
	blobHash := HashObject(TypeBlob, []byte("x"))

	forward := &Tree{}
	if err := forward.Add(ModeFile, "a.txt", blobHash); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := forward.Add(ModeFile, "b.txt", blobHash); err != nil {
		t.Fatalf("Add: %v", err)
	}

	reverse := &Tree{}
	if err := reverse.Add(ModeFile, "b.txt", blobHash); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := reverse.Add(ModeFile, "a.txt", blobHash); err != nil {
		t.Fatalf("Add: %v", err)
	}

	fb, err := Marshal(forward)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	rb, err := Marshal(reverse)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(fb, rb) {
		t.Error("insertion order changed serialization")
	}
	if HashBytes(fb) != HashBytes(rb) {
		t.Error("insertion order changed address")
	}

	// a.txt must serialize before b.txt even when added second.
	payload, err := MarshalTree(reverse)
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	aIdx := bytes.Index(payload, []byte("a.txt"))
	bIdx := bytes.Index(payload, []byte("b.txt"))
	if aIdx < 0 || bIdx < 0 || aIdx > bIdx {
		t.Errorf("entry order: a.txt at %d, b.txt at %d", aIdx, bIdx)
	}
}

func TestTreeRoundTrip(t *testing.T) {
	tr := &Tree{}
	entries := []struct {
		mode Mode
		name string
	}{
		{ModeDir, "sub"},
		{ModeFile, "readme"},
		{ModeExecutable, "run.sh"},
		{ModeSymlink, "link"},
		{ModeSubmodule, "vendor"},
	}
	for i, e := range entries {
		h := HashObject(TypeBlob, []byte{byte(i)})
		if err := tr.Add(e.mode, e.name, h); err != nil {
			t.Fatalf("Add %s: %v", e.name, err)
		}
	}

	data, err := Marshal(tr)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	o, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got := o.(*Tree)
	if len(got.Entries) != len(entries) {
		t.Fatalf("entries: got %d, want %d", len(got.Entries), len(entries))
	}
	data2, err := Marshal(got)
	if err != nil {
		t.Fatalf("re-Marshal: %v", err)
	}
	if !bytes.Equal(data, data2) {
		t.Error("round trip changed canonical bytes")
	}
	for _, e := range entries {
		entry, ok := got.Find(e.name)
		if !ok {
			t.Errorf("entry %q lost in round trip", e.name)
			continue
		}
		if entry.Mode != e.mode {
			t.Errorf("entry %q: mode %q, want %q", e.name, entry.Mode, e.mode)
		}
	}
}

func TestTreeDuplicateEntry(t *testing.T) {
	h := HashObject(TypeBlob, []byte("x"))
	tr := &Tree{}
	if err := tr.Add(ModeFile, "a", h); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := tr.Add(ModeFile, "a", h); !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("Add duplicate: got %v, want ErrDuplicateEntry", err)
	}

	// The decoder must also reject duplicates smuggled in directly.
	tr2 := &Tree{Entries: []TreeEntry{
		{Mode: ModeFile, Name: "a", Hash: h},
		{Mode: ModeFile, Name: "b", Hash: h},
	}}
	payload, err := MarshalTree(tr2)
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	dup := bytes.Replace(payload, []byte(" b\x00"), []byte(" a\x00"), 1)
	if _, err := UnmarshalTree(dup); !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("UnmarshalTree: got %v, want ErrDuplicateEntry", err)
	}
}

func TestTreeEntryNameValidation(t *testing.T) {
	h := HashObject(TypeBlob, nil)
	for _, name := range []string{"", ".", "..", "a/b"} {
		tr := &Tree{}
		if err := tr.Add(ModeFile, name, h); !errors.Is(err, ErrFormat) {
			t.Errorf("Add(%q): got %v, want ErrFormat", name, err)
		}
	}
}

func TestCommitRoundTrip(t *testing.T) {
	tree := HashObject(TypeTree, nil)
	p1 := HashObject(TypeCommit, []byte("p1"))
	p2 := HashObject(TypeCommit, []byte("p2"))

	c := &Commit{
		Tree:      tree,
		Parents:   []Hash{p1, p2},
		Author:    Person{Name: "Ada Lovelace", Email: "ada@example.com", When: 1700000000, Timezone: "+0100"},
		Committer: Person{Name: "Grace Hopper", Email: "grace@example.com", When: 1700000100, Timezone: "-0500"},
		Headers: []Header{
			{Key: "note", Value: "supplementary note"},
			{Key: "signature", Value: "sshsig-v1:ssh-ed25519:AAAA:BBBB"},
		},
		Message: "merge feature\n\nwith a multi-line body\n",
	}

	data, err := Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	o, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got := o.(*Commit)

	if got.Tree != tree {
		t.Errorf("Tree: got %s, want %s", got.Tree, tree)
	}
	if len(got.Parents) != 2 || got.Parents[0] != p1 || got.Parents[1] != p2 {
		t.Errorf("Parents: got %v", got.Parents)
	}
	if got.Author != c.Author {
		t.Errorf("Author: got %+v, want %+v", got.Author, c.Author)
	}
	if got.Committer != c.Committer {
		t.Errorf("Committer: got %+v, want %+v", got.Committer, c.Committer)
	}
	if len(got.Headers) != 2 || got.Headers[0] != c.Headers[0] || got.Headers[1] != c.Headers[1] {
		t.Errorf("Headers: got %v", got.Headers)
	}
	if got.Message != c.Message {
		t.Errorf("Message: got %q, want %q", got.Message, c.Message)
	}

	data2, err := Marshal(got)
	if err != nil {
		t.Fatalf("re-Marshal: %v", err)
	}
	if !bytes.Equal(data, data2) {
		t.Error("round trip changed canonical bytes")
	}
	if HashBytes(data) != HashBytes(data2) {
		t.Error("round trip changed address")
	}
}

func TestCommitMultiLineHeaderRoundTrip(t *testing.T) {
	c := &Commit{
		Tree:      HashObject(TypeTree, nil),
		Author:    Person{Name: "a", Email: "a@b.c", When: 1, Timezone: "+0000"},
		Committer: Person{Name: "a", Email: "a@b.c", When: 1, Timezone: "+0000"},
		Headers: []Header{
			{Key: "gpgsig", Value: "-----BEGIN-----\nline two\nline three\n-----END-----"},
		},
		Message: "signed\n",
	}

	data, err := Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	o, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got := o.(*Commit)
	if len(got.Headers) != 1 || got.Headers[0] != c.Headers[0] {
		t.Fatalf("Headers: got %v, want %v", got.Headers, c.Headers)
	}
	data2, err := Marshal(got)
	if err != nil {
		t.Fatalf("re-Marshal: %v", err)
	}
	if !bytes.Equal(data, data2) {
		t.Error("round trip changed canonical bytes")
	}
}

func TestCommitRootAndEmptyMessage(t *testing.T) {
	c := &Commit{
		Tree:      HashObject(TypeTree, nil),
		Author:    Person{Name: "a", Email: "a@b.c", When: 1, Timezone: "+0000"},
		Committer: Person{Name: "a", Email: "a@b.c", When: 1, Timezone: "+0000"},
	}
	data, err := Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	cc := got.(*Commit)
	if len(cc.Parents) != 0 {
		t.Errorf("Parents: got %v, want none", cc.Parents)
	}
	if cc.Message != "" {
		t.Errorf("Message: got %q, want empty", cc.Message)
	}
}

func TestParseFrameErrors(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"no NUL", []byte("blob 5hello"), ErrFormat},
		{"no space", []byte("blob5\x00hello"), ErrFormat},
		{"unknown kind", []byte("blub 5\x00hello"), ErrUnsupportedType},
		{"bad length", []byte("blob five\x00hello"), ErrFormat},
		{"short payload", []byte("blob 6\x00hello"), ErrSizeMismatch},
		{"long payload", []byte("blob 4\x00hello"), ErrSizeMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := ParseFrame(tc.data); !errors.Is(err, tc.want) {
				t.Errorf("ParseFrame: got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParsePersonErrors(t *testing.T) {
	cases := []string{
		"no brackets at all 1700000000 +0000",
		"name <email> notatime +0000",
		"name <email> 1700000000",
		"name <email> 1700000000 UTC",
		"name <email> 1700000000 +00",
	}
	for _, s := range cases {
		if _, err := ParsePerson(s); !errors.Is(err, ErrFormat) {
			t.Errorf("ParsePerson(%q): got %v, want ErrFormat", s, err)
		}
	}

	p, err := ParsePerson("Ada Lovelace <ada@example.com> 1700000000 +0100")
	if err != nil {
		t.Fatalf("ParsePerson: %v", err)
	}
	if p.Name != "Ada Lovelace" || p.Email != "ada@example.com" || p.When != 1700000000 || p.Timezone != "+0100" {
		t.Errorf("ParsePerson: got %+v", p)
	}
}

func TestUnmarshalCommitErrors(t *testing.T) {
	person := "a <a@b.c> 1 +0000"
	frame := func(payload string) []byte {
		return Frame(TypeCommit, []byte(payload))
	}
	tree := strings.Repeat("0", 40)

	cases := []struct {
		name    string
		payload string
	}{
		{"no separator", "tree " + tree + "\nauthor " + person + "\ncommitter " + person},
		{"missing tree", "author " + person + "\ncommitter " + person + "\n\nmsg"},
		{"bad author", "tree " + tree + "\nauthor nobody\ncommitter " + person + "\n\nmsg"},
		{"bad tree hash", "tree xyz\nauthor " + person + "\ncommitter " + person + "\n\nmsg"},
		{"stray continuation", " cont\ntree " + tree + "\nauthor " + person + "\ncommitter " + person + "\n\nmsg"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Unmarshal(frame(tc.payload)); !errors.Is(err, ErrFormat) {
				t.Errorf("Unmarshal: got %v, want ErrFormat", err)
			}
		})
	}
}

func TestHashCaseInsensitive(t *testing.T) {
	lower := Hash("4b825dc642cb6eb9a060e54bf8d69288fbee4904")
	upper := Hash("4B825DC642CB6EB9A060E54BF8D69288FBEE4904")
	if NormalizeHash(upper) != lower {
		t.Error("NormalizeHash did not lowercase")
	}
	if !ValidHash(upper) || !ValidHash(lower) {
		t.Error("ValidHash rejected valid digests")
	}
	if ValidHash("short") || ValidHash(Hash(strings.Repeat("g", 40))) {
		t.Error("ValidHash accepted invalid digests")
	}
}
