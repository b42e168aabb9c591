package pkgdata

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"

	"github.com/pkgdata/pkgdata/internal/tarfs"
)

// anchorEntry describes one registered namespace.
// dir is non-empty for directory-backed anchors, which materialize
// with zero copying.
type anchorEntry struct {
	fsys fs.FS
	dir  string
}

var (
	anchorMu sync.RWMutex
	anchors  = make(map[string]anchorEntry)
)

// Register makes fsys available as the anchor name.
//
// The name is the anchor's identity: loaders constructed from the same name
// share cache entries regardless of how or where they were constructed.
// Names are process-global and cannot be re-registered.
func Register(name string, fsys fs.FS) error {
	if fsys == nil {
		return errors.New("pkgdata: nil fs.FS")
	}
	return register(name, anchorEntry{fsys: fsys})
}

// RegisterDir makes the on-disk directory dir available as the anchor name.
//
// Directory-backed anchors materialize with zero copying: AsPath and Cached
// return paths inside dir directly, and nothing is extracted or deleted.
func RegisterDir(name, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("pkgdata: register dir %q: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("pkgdata: register dir %q: not a directory", dir)
	}
	return register(name, anchorEntry{fsys: os.DirFS(dir), dir: dir})
}

// RegisterBundle makes a zstd-compressed tar bundle available as the anchor
// name. The bundle is decoded once at registration; resources read from it
// are always extracted on materialization.
func RegisterBundle(name string, data []byte) error {
	fsys, err := tarfs.New(data)
	if err != nil {
		return fmt.Errorf("pkgdata: register bundle %q: %w", name, err)
	}
	return register(name, anchorEntry{fsys: fsys})
}

// Anchors returns the names of all registered anchors, sorted.
func Anchors() []string {
	anchorMu.RLock()
	defer anchorMu.RUnlock()
	names := make([]string, 0, len(anchors))
	for name := range anchors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func register(name string, entry anchorEntry) error {
	if name == "" {
		return errors.New("pkgdata: anchor name is empty")
	}
	anchorMu.Lock()
	defer anchorMu.Unlock()
	if _, ok := anchors[name]; ok {
		return fmt.Errorf("%w: %q", ErrAnchorExists, name)
	}
	anchors[name] = entry
	return nil
}

func lookupAnchor(name string) (anchorEntry, error) {
	anchorMu.RLock()
	defer anchorMu.RUnlock()
	entry, ok := anchors[name]
	if !ok {
		return anchorEntry{}, fmt.Errorf("%w: %q", ErrUnknownAnchor, name)
	}
	return entry, nil
}
