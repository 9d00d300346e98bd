package object

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func checkDeltaRoundTrip(t *testing.T, base, target []byte) {
	t.Helper()
	delta := CreateDelta(base, target)
	got, err := ApplyDelta(base, delta)
	if err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if !bytes.Equal(got, target) {
		t.Errorf("round trip: got %q, want %q", got, target)
	}
}

func TestDeltaRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		base   string
		target string
	}{
		{"identical", "same bytes", "same bytes"},
		{"both empty", "", ""},
		{"empty base", "", "brand new content"},
		{"empty target", "the whole thing goes away", ""},
		{"disjoint", "aaaaaaaaaa", "bbbbbbbbbb"},
		{"middle edit", "prefix MIDDLE suffix", "prefix CHANGED suffix"},
		{"prefix only", "shared head then old tail", "shared head then new end"},
		{"suffix only", "old head, shared tail", "new start, shared tail"},
		{"insert in middle", "abcdef", "abcXYZdef"},
		{"delete from middle", "abcXYZdef", "abcdef"},
		{"target extends base", "abc", "abcdef"},
		{"base extends target", "abcdef", "abc"},
		{"repetitive", strings.Repeat("ab", 500), strings.Repeat("ab", 499) + "ba"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			checkDeltaRoundTrip(t, []byte(tc.base), []byte(tc.target))
		})
	}
}

func TestDeltaIdenticalMarker(t *testing.T) {
	base := []byte("identical content")
	delta := CreateDelta(base, base)
	if len(delta) != 0 {
		t.Errorf("identical delta: got %d bytes, want 0", len(delta))
	}
	out, err := ApplyDelta(base, delta)
	if err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if !bytes.Equal(out, base) {
		t.Errorf("ApplyDelta: got %q, want %q", out, base)
	}
	// The result must be a copy, not an alias.
	out[0] = 'X'
	if base[0] == 'X' {
		t.Error("ApplyDelta aliased the base slice")
	}
}

func TestDeltaSuffixCannotOverlapPrefix(t *testing.T) {
	// base and target share more combined prefix+suffix than either is
	// long; the suffix scan must stop at the prefix boundary.
	checkDeltaRoundTrip(t, []byte("aaaa"), []byte("aaaaaaa"))
	checkDeltaRoundTrip(t, []byte("aaaaaaa"), []byte("aaaa"))
	checkDeltaRoundTrip(t, []byte("abab"), []byte("ababab"))
}

func TestDeltaCompactForSmallEdit(t *testing.T) {
	base := []byte(strings.Repeat("0123456789", 200))
	target := append([]byte{}, base...)
	target[1000] = 'X'

	delta := CreateDelta(base, target)
	if len(delta) >= len(target)/10 {
		t.Errorf("delta size %d not materially smaller than target %d", len(delta), len(target))
	}
	got, err := ApplyDelta(base, delta)
	if err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if !bytes.Equal(got, target) {
		t.Error("round trip mismatch")
	}
}

func TestApplyDeltaMalformed(t *testing.T) {
	base := []byte("0123456789")

	var wrongBase bytes.Buffer
	encodeDeltaVarint(&wrongBase, 99)
	encodeDeltaVarint(&wrongBase, 0)

	var badOp bytes.Buffer
	encodeDeltaVarint(&badOp, uint64(len(base)))
	encodeDeltaVarint(&badOp, 1)
	badOp.WriteByte(0x7e)

	var oob bytes.Buffer
	encodeDeltaVarint(&oob, uint64(len(base)))
	encodeDeltaVarint(&oob, 5)
	oob.WriteByte(deltaOpCopy)
	encodeDeltaVarint(&oob, 8)
	encodeDeltaVarint(&oob, 5) // [8, 13) exceeds base

	var short bytes.Buffer
	encodeDeltaVarint(&short, uint64(len(base)))
	encodeDeltaVarint(&short, 4)
	short.WriteByte(deltaOpInsert)
	encodeDeltaVarint(&short, 4)
	short.WriteString("ab") // literal truncated

	var sizeLie bytes.Buffer
	encodeDeltaVarint(&sizeLie, uint64(len(base)))
	encodeDeltaVarint(&sizeLie, 7)
	sizeLie.WriteByte(deltaOpCopy)
	encodeDeltaVarint(&sizeLie, 0)
	encodeDeltaVarint(&sizeLie, 3)

	cases := []struct {
		name  string
		delta []byte
	}{
		{"wrong base length", wrongBase.Bytes()},
		{"unknown opcode", badOp.Bytes()},
		{"copy out of range", oob.Bytes()},
		{"truncated insert", short.Bytes()},
		{"result size mismatch", sizeLie.Bytes()},
		{"truncated header", []byte{0x8a}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ApplyDelta(base, tc.delta); !errors.Is(err, ErrFormat) {
				t.Errorf("ApplyDelta: got %v, want ErrFormat", err)
			}
		})
	}
}

func TestDeltifyPolicy(t *testing.T) {
	base := []byte(strings.Repeat("stable content block ", 100))
	similar := append([]byte{}, base...)
	similar[50] = '!'

	if d := Deltify(base, similar); d == nil {
		t.Error("Deltify rejected a profitable delta")
	} else if got, err := ApplyDelta(base, d); err != nil || !bytes.Equal(got, similar) {
		t.Errorf("Deltify delta does not round trip: %v", err)
	}

	if d := Deltify([]byte("abc"), []byte("xyz")); d != nil {
		t.Errorf("Deltify kept an unprofitable delta of %d bytes", len(d))
	}

	if d := Deltify(base, base); d == nil || len(d) != 0 {
		t.Errorf("Deltify identical: got %v, want empty marker", d)
	}
}
