package object

import (
	"bytes"
	"fmt"
	"io"
)

// Delta codec: a compact encoding of target bytes as edits against a
// base. The scheme is deliberately simple — longest common prefix,
// longest common suffix, literal middle — and self-describing, so a
// stronger diff can replace CreateDelta later without touching
// ApplyDelta's contract.
//
// Wire format: varint(baseLen) varint(targetLen) followed by
// instructions. A zero-length delta is the "identical" marker.
const (
	deltaOpCopy   = 0x01 // varint offset, varint length: copy from base
	deltaOpInsert = 0x02 // varint length, literal bytes
)

// DeltaMaxRatio is the storage policy threshold: a delta is worth
// keeping only when it is smaller than this fraction of the full
// target payload.
const DeltaMaxRatio = 0.8

func encodeDeltaVarint(buf *bytes.Buffer, v uint64) {
	if v == 0 {
		buf.WriteByte(0)
		return
	}
	for v > 0 {
		b := byte(v & 0x7f)
		v >>= 7
		if v > 0 {
			b |= 0x80
		}
		buf.WriteByte(b)
	}
}

func decodeDeltaVarint(r io.ByteReader) (uint64, error) {
	var (
		value uint64
		shift uint
	)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("delta varint truncated: %w", ErrFormat)
		}
		value |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return value, nil
		}
		shift += 7
		if shift > 63 {
			return 0, fmt.Errorf("delta varint too large: %w", ErrFormat)
		}
	}
}

// CreateDelta encodes target as edits against base. Equal inputs
// produce the zero-length identical marker.
func CreateDelta(base, target []byte) []byte {
	if bytes.Equal(base, target) {
		return []byte{}
	}

	prefix := 0
	max := len(base)
	if len(target) < max {
		max = len(target)
	}
	for prefix < max && base[prefix] == target[prefix] {
		prefix++
	}

	// Suffix search is bounded so it cannot overlap the prefix.
	suffix := 0
	for suffix < max-prefix &&
		base[len(base)-1-suffix] == target[len(target)-1-suffix] {
		suffix++
	}

	var out bytes.Buffer
	encodeDeltaVarint(&out, uint64(len(base)))
	encodeDeltaVarint(&out, uint64(len(target)))

	if prefix > 0 {
		out.WriteByte(deltaOpCopy)
		encodeDeltaVarint(&out, 0)
		encodeDeltaVarint(&out, uint64(prefix))
	}
	if middle := target[prefix : len(target)-suffix]; len(middle) > 0 {
		out.WriteByte(deltaOpInsert)
		encodeDeltaVarint(&out, uint64(len(middle)))
		out.Write(middle)
	}
	if suffix > 0 {
		out.WriteByte(deltaOpCopy)
		encodeDeltaVarint(&out, uint64(len(base)-suffix))
		encodeDeltaVarint(&out, uint64(suffix))
	}
	return out.Bytes()
}

// ApplyDelta replays delta instructions against base, reproducing the
// target exactly. Malformed opcodes, out-of-range copies, and length
// mismatches are rejected.
func ApplyDelta(base, delta []byte) ([]byte, error) {
	if len(delta) == 0 {
		out := make([]byte, len(base))
		copy(out, base)
		return out, nil
	}

	dr := bytes.NewReader(delta)
	baseLen, err := decodeDeltaVarint(dr)
	if err != nil {
		return nil, fmt.Errorf("apply delta: base length: %w", err)
	}
	if baseLen != uint64(len(base)) {
		return nil, fmt.Errorf("apply delta: base length %d, delta expects %d: %w", len(base), baseLen, ErrFormat)
	}
	targetLen, err := decodeDeltaVarint(dr)
	if err != nil {
		return nil, fmt.Errorf("apply delta: target length: %w", err)
	}

	out := make([]byte, 0, targetLen)
	for dr.Len() > 0 {
		op, err := dr.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("apply delta: opcode: %w", ErrFormat)
		}
		switch op {
		case deltaOpCopy:
			offset, err := decodeDeltaVarint(dr)
			if err != nil {
				return nil, fmt.Errorf("apply delta: copy offset: %w", err)
			}
			length, err := decodeDeltaVarint(dr)
			if err != nil {
				return nil, fmt.Errorf("apply delta: copy length: %w", err)
			}
			if offset+length > uint64(len(base)) || offset+length < offset {
				return nil, fmt.Errorf("apply delta: copy [%d, %d) out of range: %w", offset, offset+length, ErrFormat)
			}
			out = append(out, base[offset:offset+length]...)
		case deltaOpInsert:
			length, err := decodeDeltaVarint(dr)
			if err != nil {
				return nil, fmt.Errorf("apply delta: insert length: %w", err)
			}
			if length > uint64(dr.Len()) {
				return nil, fmt.Errorf("apply delta: insert of %d exceeds remaining %d: %w", length, dr.Len(), ErrFormat)
			}
			lit := make([]byte, length)
			if _, err := io.ReadFull(dr, lit); err != nil {
				return nil, fmt.Errorf("apply delta: insert literal: %w", ErrFormat)
			}
			out = append(out, lit...)
		default:
			return nil, fmt.Errorf("apply delta: unknown opcode %#x: %w", op, ErrFormat)
		}
	}

	if uint64(len(out)) != targetLen {
		return nil, fmt.Errorf("apply delta: produced %d bytes, delta declares %d: %w", len(out), targetLen, ErrFormat)
	}
	return out, nil
}

// Deltify returns a delta for target against base when the delta is
// materially smaller than storing target whole (under DeltaMaxRatio of
// the full payload size), and nil when full storage is the better
// choice. Either representation round-trips; this is purely a
// storage-efficiency policy.
func Deltify(base, target []byte) []byte {
	delta := CreateDelta(base, target)
	if len(delta) == 0 {
		return delta
	}
	if float64(len(delta)) < DeltaMaxRatio*float64(len(target)) {
		return delta
	}
	return nil
}
