package pkgdata

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
)

// Resource is a virtual, read-only handle to a resource within an anchor.
//
// A Resource may or may not correspond to a real file on disk and may
// represent a directory. It supports read access, directory listing, and
// sub-path joining without materializing anything to the filesystem.
// Handles are cheap to construct and are never cached.
type Resource struct {
	anchor string
	fsys   fs.FS
	name   string
}

// Anchor returns the name of the anchor this resource belongs to.
func (r *Resource) Anchor() string { return r.anchor }

// Name returns the slash-separated path of the resource within its anchor.
// The anchor root is ".".
func (r *Resource) Name() string { return r.name }

// String returns the anchor-qualified resource path.
func (r *Resource) String() string {
	return r.anchor + ":" + r.name
}

// Join returns a handle for a sub-path of this resource.
func (r *Resource) Join(segments ...string) *Resource {
	return &Resource{
		anchor: r.anchor,
		fsys:   r.fsys,
		name:   path.Join(append([]string{r.name}, segments...)...),
	}
}

// Open opens the resource for reading.
func (r *Resource) Open() (fs.File, error) {
	f, err := r.fsys.Open(r.name)
	if err != nil {
		return nil, r.wrap(err)
	}
	return f, nil
}

// ReadFile returns the full content of the resource.
func (r *Resource) ReadFile() ([]byte, error) {
	data, err := fs.ReadFile(r.fsys, r.name)
	if err != nil {
		return nil, r.wrap(err)
	}
	return data, nil
}

// ReadDir lists the resource's directory entries.
func (r *Resource) ReadDir() ([]fs.DirEntry, error) {
	entries, err := fs.ReadDir(r.fsys, r.name)
	if err != nil {
		return nil, r.wrap(err)
	}
	return entries, nil
}

// Stat describes the resource.
func (r *Resource) Stat() (fs.FileInfo, error) {
	info, err := fs.Stat(r.fsys, r.name)
	if err != nil {
		return nil, r.wrap(err)
	}
	return info, nil
}

// Exists reports whether the resource exists within its anchor.
func (r *Resource) Exists() bool {
	_, err := fs.Stat(r.fsys, r.name)
	return err == nil
}

// IsDir reports whether the resource is a directory.
// Nonexistent resources report false.
func (r *Resource) IsDir() bool {
	info, err := fs.Stat(r.fsys, r.name)
	return err == nil && info.IsDir()
}

// wrap converts fs-level not-exist errors into ErrNotFound with the
// anchor-qualified path attached.
func (r *Resource) wrap(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, r.String())
	}
	return fmt.Errorf("pkgdata: %s: %w", r.String(), err)
}

// joinSegments validates and joins path segments into an fs.FS path.
// No segments means the anchor root.
func joinSegments(segments []string) (string, error) {
	name := path.Join(segments...)
	if name == "" {
		name = "."
	}
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: "resolve", Path: name, Err: fs.ErrInvalid}
	}
	return name, nil
}
