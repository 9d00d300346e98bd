// Package repo ties the object store, refs, and configuration into a
// repository session. It is the boundary layer around the
// content-addressed core: it maps symbolic names (HEAD, branches) to
// addresses and owns the store instance, so nothing in the core needs
// global state.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/odvcencio/strata/pkg/object"
)

// DirName is the repository metadata directory, analogous to .git.
const DirName = ".strata"

// ErrNotRepository is returned by Open when no repository directory is
// found at or above the starting path.
var ErrNotRepository = errors.New("not a strata repository")

// Repo represents an opened repository.
type Repo struct {
	RootDir   string        // working directory root
	StrataDir string        // .strata/ directory
	Store     *object.Store // content-addressed object store
	Config    *Config

	log *zap.Logger
}

// Option configures an opened repository.
type Option func(*Repo)

// WithLogger attaches a logger to the session and its store.
func WithLogger(log *zap.Logger) Option {
	return func(r *Repo) { r.log = log }
}

// Init creates an empty repository at root: the objects directory, the
// refs hierarchy, HEAD pointing at the default branch, and a default
// config. Re-running Init on an existing repository is an error.
func Init(root string, opts ...Option) (*Repo, error) {
	strataDir := filepath.Join(root, DirName)
	if _, err := os.Stat(strataDir); err == nil {
		return nil, fmt.Errorf("init %s: repository already exists", root)
	}

	for _, dir := range []string{
		filepath.Join(strataDir, "objects"),
		filepath.Join(strataDir, "refs", "heads"),
		filepath.Join(strataDir, "refs", "tags"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := writeConfigFile(filepath.Join(strataDir, configFileName), cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	head := fmt.Sprintf("ref: refs/heads/%s\n", cfg.Core.DefaultBranch)
	if err := os.WriteFile(filepath.Join(strataDir, "HEAD"), []byte(head), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	return Open(root, opts...)
}

// Open finds the repository containing start by walking up the
// directory tree, loads its configuration, and builds the store.
func Open(start string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	root := abs
	for {
		if _, err := os.Stat(filepath.Join(root, DirName)); err == nil {
			break
		}
		parent := filepath.Dir(root)
		if parent == root {
			return nil, fmt.Errorf("open %s: %w", start, ErrNotRepository)
		}
		root = parent
	}

	strataDir := filepath.Join(root, DirName)
	cfg, err := loadConfigFile(filepath.Join(strataDir, configFileName))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	r := &Repo{
		RootDir:   root,
		StrataDir: strataDir,
		Config:    cfg,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Store = object.NewStore(strataDir,
		object.WithCompressionLevel(cfg.Core.CompressionLevel),
		object.WithCacheSize(cfg.Core.CacheSize),
		object.WithLogger(r.log),
	)
	return r, nil
}
