package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio"

	"github.com/odvcencio/strata/pkg/object"
)

// ErrNoRef is returned when a requested ref does not exist, including
// HEAD on a branch with no commits yet.
var ErrNoRef = errors.New("ref not found")

const headFile = "HEAD"

// Ref pointer files are mutable state outside the content-addressed
// core: writes are atomic (renameio), but concurrent writers are the
// caller's problem, per the store's concurrency contract.

func (r *Repo) refPath(name string) string {
	return filepath.Join(r.StrataDir, filepath.FromSlash(name))
}

// ReadRef resolves a ref name like "refs/heads/main" to an address.
func (r *Repo) ReadRef(name string) (object.Hash, error) {
	data, err := os.ReadFile(r.refPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("ref %s: %w", name, ErrNoRef)
		}
		return "", fmt.Errorf("read ref %s: %w", name, err)
	}
	h := object.NormalizeHash(object.Hash(strings.TrimSpace(string(data))))
	if !object.ValidHash(h) {
		return "", fmt.Errorf("ref %s: malformed target %q", name, strings.TrimSpace(string(data)))
	}
	return h, nil
}

// UpdateRef atomically points a ref at an address.
func (r *Repo) UpdateRef(name string, h object.Hash) error {
	h = object.NormalizeHash(h)
	if !object.ValidHash(h) {
		return fmt.Errorf("update ref %s: invalid hash %q", name, h)
	}
	path := r.refPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("update ref %s: %w", name, err)
	}
	if err := renameio.WriteFile(path, []byte(string(h)+"\n"), 0o644); err != nil {
		return fmt.Errorf("update ref %s: %w", name, err)
	}
	return nil
}

// ListRefs lists references under .strata/refs, names relative to the
// refs root, e.g. "heads/main", "tags/v1".
func (r *Repo) ListRefs(prefix string) (map[string]object.Hash, error) {
	root := filepath.Join(r.StrataDir, "refs")
	dir := root
	if strings.TrimSpace(prefix) != "" {
		dir = filepath.Join(root, filepath.FromSlash(prefix))
	}

	refs := make(map[string]object.Hash)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		refs[filepath.ToSlash(rel)] = object.NormalizeHash(object.Hash(strings.TrimSpace(string(data))))
		return nil
	})
	if os.IsNotExist(err) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return refs, nil
}

// Head resolves HEAD to a commit address. A symbolic HEAD whose branch
// has no commits yet reports ErrNoRef.
func (r *Repo) Head() (object.Hash, error) {
	data, err := os.ReadFile(filepath.Join(r.StrataDir, headFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("HEAD: %w", ErrNoRef)
		}
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	target := strings.TrimSpace(string(data))
	if name, ok := strings.CutPrefix(target, "ref: "); ok {
		return r.ReadRef(name)
	}
	h := object.NormalizeHash(object.Hash(target))
	if !object.ValidHash(h) {
		return "", fmt.Errorf("HEAD: malformed target %q", target)
	}
	return h, nil
}

// CurrentBranch returns the branch HEAD points at, or false when HEAD
// is detached.
func (r *Repo) CurrentBranch() (string, bool) {
	data, err := os.ReadFile(filepath.Join(r.StrataDir, headFile))
	if err != nil {
		return "", false
	}
	target := strings.TrimSpace(string(data))
	name, ok := strings.CutPrefix(target, "ref: refs/heads/")
	if !ok {
		return "", false
	}
	return name, true
}
