package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zlib"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// largeObjectThreshold is the payload size above which hashing and
	// compression run incrementally over fixed-size chunks.
	largeObjectThreshold = 1 << 20

	// writeChunkSize is the unit of incremental hashing/compression.
	writeChunkSize = 8 << 10
)

// Store is a content-addressed loose-object store with a 2-character
// fan-out layout: <root>/objects/ab/cdef0123... Stored bytes are the
// zlib-deflated canonical serialization. Writes are idempotent; reads
// verify integrity by recomputing the address.
type Store struct {
	fs    afero.Fs
	root  string
	level int
	cache *objectCache
	log   *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithFilesystem backs the store with the given filesystem. Defaults
// to the OS filesystem.
func WithFilesystem(fs afero.Fs) Option {
	return func(s *Store) { s.fs = fs }
}

// WithCompressionLevel sets the zlib level used for new objects.
func WithCompressionLevel(level int) Option {
	return func(s *Store) { s.level = level }
}

// WithCacheSize bounds the decoded-object cache. Zero or negative
// disables caching.
func WithCacheSize(size int) Option {
	return func(s *Store) { s.cache = newObjectCache(size) }
}

// WithLogger attaches a logger for store operations. Defaults to nop.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string, opts ...Option) *Store {
	s := &Store{
		fs:    afero.NewOsFs(),
		root:  root,
		level: DefaultCompressionLevel,
		cache: newObjectCache(DefaultCacheSize),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the directory the store was rooted at.
func (s *Store) Root() string { return s.root }

func (s *Store) objectsDir() string {
	return filepath.Join(s.root, "objects")
}

func (s *Store) shardDir(h Hash) string {
	return filepath.Join(s.objectsDir(), string(h[:2]))
}

func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.objectsDir(), string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given
// address.
func (s *Store) Has(h Hash) bool {
	h = NormalizeHash(h)
	if !ValidHash(h) {
		return false
	}
	_, err := s.fs.Stat(s.objectPath(h))
	return err == nil
}

// Write serializes o, derives its address, and persists the compressed
// bytes. Writing an object that already exists is a no-op returning
// the same address: content addressing makes re-writes semantically
// redundant, never an error. Concurrent writers of the same address
// race at worst to a byte-identical rename.
func (s *Store) Write(o Object) (Hash, error) {
	payload, err := MarshalPayload(o)
	if err != nil {
		return "", fmt.Errorf("store write: %w", err)
	}
	h := HashObject(o.Type(), payload)

	if s.Has(h) {
		s.cache.add(h, o)
		return h, nil
	}

	if err := s.writeLoose(h, o.Type(), payload); err != nil {
		return "", err
	}
	s.cache.add(h, o)
	s.log.Debug("object written",
		zap.String("address", string(h)),
		zap.String("type", string(o.Type())),
		zap.Int("size", len(payload)))
	return h, nil
}

// writeLoose compresses the framed payload into a temp file in the
// shard directory and renames it into place. Payloads above the large
// object threshold are fed through in fixed-size chunks so peak memory
// stays bounded by the compressor's window, not the object size.
func (s *Store) writeLoose(h Hash, objType ObjectType, payload []byte) error {
	dir := s.shardDir(h)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store write mkdir: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("store write tmpfile: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		s.fs.Remove(tmpName)
	}

	zw, err := zlib.NewWriterLevel(tmp, s.level)
	if err != nil {
		cleanup()
		return fmt.Errorf("store write: level %d: %w", s.level, err)
	}
	if _, err := fmt.Fprintf(zw, "%s %d\x00", objType, len(payload)); err != nil {
		cleanup()
		return fmt.Errorf("store write: %w", err)
	}
	for off := 0; off < len(payload); off += writeChunkSize {
		end := off + writeChunkSize
		if end > len(payload) {
			end = len(payload)
		}
		if _, err := zw.Write(payload[off:end]); err != nil {
			cleanup()
			return fmt.Errorf("store write: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		cleanup()
		return fmt.Errorf("store write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("store write close: %w", err)
	}
	if err := s.fs.Rename(tmpName, s.objectPath(h)); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("store write rename: %w", err)
	}
	return nil
}

// WriteBlobFrom streams size bytes from r into the store as a blob,
// hashing and compressing incrementally so the content is never fully
// materialized. The stream lands in a temp file first because the
// address is only known once the last byte has been hashed.
func (s *Store) WriteBlobFrom(r io.Reader, size int64) (Hash, error) {
	if size < 0 {
		return "", fmt.Errorf("store write blob: negative size %d: %w", size, ErrFormat)
	}
	if err := s.fs.MkdirAll(s.objectsDir(), 0o755); err != nil {
		return "", fmt.Errorf("store write blob mkdir: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, s.objectsDir(), ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("store write blob tmpfile: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		s.fs.Remove(tmpName)
	}

	zw, err := zlib.NewWriterLevel(tmp, s.level)
	if err != nil {
		cleanup()
		return "", fmt.Errorf("store write blob: level %d: %w", s.level, err)
	}
	hasher := sha1.New()
	w := io.MultiWriter(hasher, zw)

	if _, err := fmt.Fprintf(w, "%s %d\x00", TypeBlob, size); err != nil {
		cleanup()
		return "", fmt.Errorf("store write blob: %w", err)
	}
	buf := make([]byte, writeChunkSize)
	n, err := io.CopyBuffer(w, io.LimitReader(r, size), buf)
	if err != nil {
		cleanup()
		return "", fmt.Errorf("store write blob: %w", err)
	}
	if n != size {
		cleanup()
		return "", fmt.Errorf("store write blob: declared %d read %d: %w", size, n, ErrSizeMismatch)
	}
	if err := zw.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("store write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return "", fmt.Errorf("store write blob close: %w", err)
	}

	h := Hash(hex.EncodeToString(hasher.Sum(nil)))
	if s.Has(h) {
		s.fs.Remove(tmpName)
		return h, nil
	}
	if err := s.fs.MkdirAll(s.shardDir(h), 0o755); err != nil {
		s.fs.Remove(tmpName)
		return "", fmt.Errorf("store write blob mkdir: %w", err)
	}
	if err := s.fs.Rename(tmpName, s.objectPath(h)); err != nil {
		s.fs.Remove(tmpName)
		return "", fmt.Errorf("store write blob rename: %w", err)
	}
	s.log.Debug("blob streamed",
		zap.String("address", string(h)),
		zap.Int64("size", size))
	return h, nil
}

// Read retrieves an object by address. The cache is consulted first;
// on a miss the stored bytes are decompressed, parsed, and verified by
// recomputing the address from the freshly parsed bytes — a mismatch
// is corruption and surfaces as ErrIntegrity, never as altered
// content. Any read failure evicts a stale cache entry.
func (s *Store) Read(h Hash) (Object, error) {
	h = NormalizeHash(h)
	if !ValidHash(h) {
		return nil, fmt.Errorf("store read: invalid address %q: %w", h, ErrFormat)
	}

	if o, ok := s.cache.get(h); ok {
		return o, nil
	}

	compressed, err := afero.ReadFile(s.fs, s.objectPath(h))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("store read %s: %w", h, ErrNotFound)
		}
		return nil, fmt.Errorf("store read %s: %w", h, err)
	}

	raw, err := Decompress(compressed)
	if err != nil {
		s.cache.remove(h)
		return nil, fmt.Errorf("store read %s: %w", h, err)
	}
	o, err := Unmarshal(raw)
	if err != nil {
		s.cache.remove(h)
		return nil, fmt.Errorf("store read %s: %w", h, err)
	}
	if got := HashBytes(raw); got != h {
		s.cache.remove(h)
		return nil, fmt.Errorf("store read %s: recomputed address %s: %w", h, got, ErrIntegrity)
	}

	s.cache.add(h, o)
	return o, nil
}

// Addresses lists every object address in the store, sorted. Temp
// files and foreign entries in the fan-out are skipped.
func (s *Store) Addresses() ([]Hash, error) {
	shards, err := afero.ReadDir(s.fs, s.objectsDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store list: %w", err)
	}

	var out []Hash
	for _, shard := range shards {
		if !shard.IsDir() || len(shard.Name()) != 2 {
			continue
		}
		files, err := afero.ReadDir(s.fs, filepath.Join(s.objectsDir(), shard.Name()))
		if err != nil {
			return nil, fmt.Errorf("store list %s: %w", shard.Name(), err)
		}
		for _, f := range files {
			h := Hash(shard.Name() + f.Name())
			if f.IsDir() || !ValidHash(h) {
				continue
			}
			out = append(out, NormalizeHash(h))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) { return s.Write(b) }

// ReadBlob reads an object and requires it to be a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	o, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	b, ok := o.(*Blob)
	if !ok {
		return nil, fmt.Errorf("object %s: got %q, want %q: %w", h, o.Type(), TypeBlob, ErrUnsupportedType)
	}
	return b, nil
}

// WriteTree stores a Tree.
func (s *Store) WriteTree(tr *Tree) (Hash, error) { return s.Write(tr) }

// ReadTree reads an object and requires it to be a Tree.
func (s *Store) ReadTree(h Hash) (*Tree, error) {
	o, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	tr, ok := o.(*Tree)
	if !ok {
		return nil, fmt.Errorf("object %s: got %q, want %q: %w", h, o.Type(), TypeTree, ErrUnsupportedType)
	}
	return tr, nil
}

// WriteCommit stores a Commit.
func (s *Store) WriteCommit(c *Commit) (Hash, error) { return s.Write(c) }

// ReadCommit reads an object and requires it to be a Commit.
func (s *Store) ReadCommit(h Hash) (*Commit, error) {
	o, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	c, ok := o.(*Commit)
	if !ok {
		return nil, fmt.Errorf("object %s: got %q, want %q: %w", h, o.Type(), TypeCommit, ErrUnsupportedType)
	}
	return c, nil
}
