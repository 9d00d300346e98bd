package object

import "errors"

// Error kinds surfaced by the codec and store. All wrapping uses %w so
// callers can test with errors.Is.
var (
	// ErrFormat marks a structurally invalid object: missing frame
	// terminator, malformed tree entry, bad person or timestamp text.
	ErrFormat = errors.New("malformed object")

	// ErrSizeMismatch marks a declared payload length that does not
	// match the actual payload.
	ErrSizeMismatch = errors.New("object size mismatch")

	// ErrIntegrity marks corruption: a recomputed address that differs
	// from the requested one, or an undecompressable stored stream.
	ErrIntegrity = errors.New("object integrity violation")

	// ErrNotFound marks a read of an address with no stored object.
	ErrNotFound = errors.New("object not found")

	// ErrUnsupportedType marks an unknown kind tag in an object frame.
	ErrUnsupportedType = errors.New("unsupported object type")

	// ErrDuplicateEntry marks a tree carrying two entries with the
	// same name.
	ErrDuplicateEntry = errors.New("duplicate tree entry")
)
