package pkgdata

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/pkgdata/pkgdata/internal/extract"
)

// ScopedPath is a filesystem path acquired for a caller-delimited scope.
//
// Close releases the acquisition: if the path was backed by a temporary
// extraction, the extraction is deleted; if the path points at a
// pre-existing real file (directory-backed anchors), Close is a no-op and
// the file is left untouched. Close is idempotent.
type ScopedPath struct {
	path    string
	tempDir string

	once     sync.Once
	closeErr error
}

// Path returns the acquired filesystem path. The path is read-only and
// owned by the acquisition; callers must not delete or move it.
func (p *ScopedPath) Path() string { return p.path }

// String returns the acquired filesystem path.
func (p *ScopedPath) String() string { return p.path }

// Close releases the acquisition and deletes any temporary extraction.
func (p *ScopedPath) Close() error {
	p.once.Do(func() {
		if p.tempDir != "" {
			p.closeErr = os.RemoveAll(p.tempDir)
		}
	})
	return p.closeErr
}

// materialize produces a real filesystem path for the named resource.
//
// Directory-backed anchors resolve to their real on-disk location with zero
// copying. Everything else is extracted into a private directory under
// tempRoot; the returned ScopedPath owns the extraction.
func materialize(entry anchorEntry, anchor, name, tempRoot string) (*ScopedPath, error) {
	info, err := fs.Stat(entry.fsys, name)
	if err != nil {
		r := &Resource{anchor: anchor, fsys: entry.fsys, name: name}
		return nil, r.wrap(err)
	}

	if entry.dir != "" {
		real := entry.dir
		if name != "." {
			real = filepath.Join(entry.dir, filepath.FromSlash(name))
		}
		return &ScopedPath{path: real}, nil
	}

	if tempRoot == "" {
		tempRoot = os.TempDir()
	}
	tmp := filepath.Join(tempRoot, "pkgdata-"+uuid.NewString())
	if err := os.MkdirAll(tmp, 0o700); err != nil {
		return nil, fmt.Errorf("pkgdata: create temp dir: %w", err)
	}

	dest := tmp
	if name != "." {
		dest = filepath.Join(tmp, path.Base(name))
	}

	if info.IsDir() {
		err = extract.Dir(entry.fsys, name, dest)
	} else {
		err = extract.File(entry.fsys, name, dest)
	}
	if err != nil {
		_ = os.RemoveAll(tmp)
		return nil, fmt.Errorf("pkgdata: extract %s:%s: %w", anchor, name, err)
	}

	return &ScopedPath{path: dest, tempDir: tmp}, nil
}
