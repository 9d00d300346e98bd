package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/strata/pkg/object"
)

// Snapshot writes the working directory into the store as a tree of
// blobs and subtrees, and returns the root tree address. The metadata
// directory and dotfile VCS directories are skipped.
func (r *Repo) Snapshot() (object.Hash, error) {
	return r.writeDirTree(r.RootDir)
}

func (r *Repo) writeDirTree(dir string) (object.Hash, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("snapshot %s: %w", dir, err)
	}

	tree := &object.Tree{}
	for _, entry := range entries {
		name := entry.Name()
		if name == DirName || name == ".git" {
			continue
		}
		path := filepath.Join(dir, name)

		switch {
		case entry.Type()&os.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return "", fmt.Errorf("snapshot %s: %w", path, err)
			}
			h, err := r.Store.WriteBlob(&object.Blob{Data: []byte(target)})
			if err != nil {
				return "", fmt.Errorf("snapshot %s: %w", path, err)
			}
			if err := tree.Add(object.ModeSymlink, name, h); err != nil {
				return "", fmt.Errorf("snapshot %s: %w", path, err)
			}

		case entry.IsDir():
			h, err := r.writeDirTree(path)
			if err != nil {
				return "", err
			}
			if err := tree.Add(object.ModeDir, name, h); err != nil {
				return "", fmt.Errorf("snapshot %s: %w", path, err)
			}

		default:
			h, err := r.writeFileBlob(path)
			if err != nil {
				return "", err
			}
			mode := object.ModeFile
			if info, err := entry.Info(); err == nil && info.Mode()&0o111 != 0 {
				mode = object.ModeExecutable
			}
			if err := tree.Add(mode, name, h); err != nil {
				return "", fmt.Errorf("snapshot %s: %w", path, err)
			}
		}
	}

	h, err := r.Store.WriteTree(tree)
	if err != nil {
		return "", fmt.Errorf("snapshot %s: %w", dir, err)
	}
	return h, nil
}

// writeFileBlob streams file content into the store without loading
// it whole.
func (r *Repo) writeFileBlob(path string) (object.Hash, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("snapshot %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("snapshot %s: %w", path, err)
	}
	h, err := r.Store.WriteBlobFrom(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("snapshot %s: %w", path, err)
	}
	return h, nil
}

// AddFile stores a single file's content as a blob and returns its
// address, the hash-object building block.
func (r *Repo) AddFile(path string) (object.Hash, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("add: empty path")
	}
	return r.writeFileBlob(path)
}
