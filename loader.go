package pkgdata

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
)

// Loader provides access to the resources of one anchor.
//
// A Loader holds no materialized state of its own; all caching lives in the
// registry, so two loaders built from the same anchor name share cache
// entries. Loaders are safe for concurrent use.
type Loader struct {
	anchor string
	entry  anchorEntry
	reg    *Registry

	descOnce sync.Once
	desc     string
}

// New creates a Loader for a registered anchor.
// Returns ErrUnknownAnchor if the name does not resolve.
func New(anchor string, opts ...LoaderOption) (*Loader, error) {
	entry, err := lookupAnchor(anchor)
	if err != nil {
		return nil, err
	}
	l := &Loader{
		anchor: anchor,
		entry:  entry,
		reg:    defaultRegistry,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l, nil
}

// Anchor returns the loader's anchor name.
func (l *Loader) Anchor() string { return l.anchor }

// Readable returns a virtual handle for read access to a resource.
//
// The resource may or may not exist on the filesystem; the handle supports
// reads, directory listing, and sub-path joining without materializing
// anything. The result is not cached.
func (l *Loader) Readable(segments ...string) (*Resource, error) {
	name, err := joinSegments(segments)
	if err != nil {
		return nil, err
	}
	return &Resource{anchor: l.anchor, fsys: l.entry.fsys, name: name}, nil
}

// AsPath acquires the resource as a real filesystem path for a
// caller-delimited scope:
//
//	sp, err := loader.AsPath("data")
//	if err != nil {
//	    return err
//	}
//	defer sp.Close()
//	use(sp.Path())
//
// Any temporary extraction is deleted on Close; pre-existing real files are
// returned directly and left untouched. The result is not cached, and
// repeated calls may re-extract.
func (l *Loader) AsPath(segments ...string) (*ScopedPath, error) {
	name, err := joinSegments(segments)
	if err != nil {
		return nil, err
	}
	return materialize(l.entry, l.anchor, name, l.reg.tempDir)
}

// Cached ensures the resource is available as a real filesystem path for
// the remainder of the process.
//
// Results are cached per (anchor, segments) identity, so repeated calls
// never unpack the same resource twice. Directories and their contents
// requested as separate identities are cached independently and may
// duplicate data on disk. Extractions are deleted when the loader's
// registry is closed.
func (l *Loader) Cached(segments ...string) (string, error) {
	return l.reg.Cached(l.anchor, segments...)
}

// Load is shorthand for Cached.
func (l *Loader) Load(segments ...string) (string, error) {
	return l.Cached(segments...)
}

// MustCached is like Cached but panics on error. Intended for loading
// assets at program initialization, where a missing resource is a bug.
func (l *Loader) MustCached(segments ...string) string {
	p, err := l.Cached(segments...)
	if err != nil {
		panic(err)
	}
	return p
}

// Describe returns a human-readable description of the loader listing the
// public top-level entries under its anchor: names not starting with "."
// or "_", excluding "tests", sorted, directories suffixed with "/".
// The description is computed once per loader.
func (l *Loader) Describe() string {
	l.descOnce.Do(func() {
		l.desc = describe(l.anchor, l.entry.fsys)
	})
	return l.desc
}

func describe(anchor string, fsys fs.FS) string {
	var names []string
	entries, err := fs.ReadDir(fsys, ".")
	if err == nil {
		for _, e := range entries {
			name := e.Name()
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "tests" {
				continue
			}
			if e.IsDir() {
				name += "/"
			}
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "Load package files relative to %q.\n", anchor)
	b.WriteString("\nThis anchor contains the following top-level entries:\n\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  * %s\n", name)
	}
	return b.String()
}
