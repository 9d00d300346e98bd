package object

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// DefaultCompressionLevel favors speed over ratio; loose objects are
// written once and read many times, and most payloads are small.
const DefaultCompressionLevel = zlib.BestSpeed

// Compress deflates data at the given zlib level.
func Compress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("compress: level %d: %w", level, err)
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, fmt.Errorf("compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates a stored stream. Truncated or corrupt input is
// reported as ErrIntegrity: the stream came off disk and should have
// been a valid deflate stream, so failure here means corruption, not a
// caller-side format mistake.
func Decompress(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompress: %v: %w", err, ErrIntegrity)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress: %v: %w", err, ErrIntegrity)
	}
	return out, nil
}

// CompressObject frames and deflates an object payload in one step,
// producing the exact bytes stored on disk for a loose object.
func CompressObject(objType ObjectType, payload []byte, level int) ([]byte, error) {
	return Compress(Frame(objType, payload), level)
}

// DecompressObject inflates stored bytes and splits the frame.
func DecompressObject(data []byte) (ObjectType, []byte, error) {
	raw, err := Decompress(data)
	if err != nil {
		return "", nil, err
	}
	return ParseFrame(raw)
}
