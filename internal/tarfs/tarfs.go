// Package tarfs implements a read-only fs.FS over a zstd-compressed tar
// bundle held in memory.
package tarfs

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// ErrUnsupportedEntry is returned when the bundle contains an entry that is
// neither a regular file nor a directory (e.g. a symlink).
var ErrUnsupportedEntry = errors.New("tarfs: unsupported entry type")

// FS is an immutable filesystem decoded from a tar.zst bundle.
// It implements fs.FS, fs.ReadFileFS, fs.ReadDirFS and fs.StatFS.
type FS struct {
	files map[string]*fileEntry
	dirs  map[string][]string
}

type fileEntry struct {
	data    []byte
	mode    fs.FileMode
	modTime time.Time
}

// Interface compliance.
var (
	_ fs.FS         = (*FS)(nil)
	_ fs.ReadFileFS = (*FS)(nil)
	_ fs.ReadDirFS  = (*FS)(nil)
	_ fs.StatFS     = (*FS)(nil)
)

// New decodes a zstd-compressed tar bundle into an in-memory filesystem.
func New(data []byte) (*FS, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("tarfs: open decoder: %w", err)
	}
	defer dec.Close()

	fsys := &FS{
		files: make(map[string]*fileEntry),
		dirs:  make(map[string][]string),
	}
	children := map[string]map[string]struct{}{".": {}}

	tr := tar.NewReader(dec)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tarfs: read bundle: %w", err)
		}

		name := cleanName(hdr.Name)
		if name == "." || name == "" {
			continue
		}
		if !fs.ValidPath(name) {
			return nil, fmt.Errorf("tarfs: invalid entry path %q", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			addParents(children, name)
			if _, ok := children[name]; !ok {
				children[name] = map[string]struct{}{}
			}
		case tar.TypeReg:
			content, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("tarfs: read %s: %w", name, err)
			}
			fsys.files[name] = &fileEntry{
				data:    content,
				mode:    fs.FileMode(hdr.Mode).Perm(),
				modTime: hdr.ModTime,
			}
			addParents(children, name)
		case tar.TypeXGlobalHeader:
			// Metadata only, nothing to store.
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedEntry, hdr.Name)
		}
	}

	for dir, set := range children {
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		sort.Strings(names)
		fsys.dirs[dir] = names
	}
	return fsys, nil
}

// cleanName normalizes a tar entry name to an fs.FS path.
func cleanName(name string) string {
	name = strings.TrimSuffix(name, "/")
	name = strings.TrimPrefix(name, "./")
	return path.Clean(name)
}

// addParents records name as a child of its parent and creates any missing
// ancestor directories up to the root.
func addParents(children map[string]map[string]struct{}, name string) {
	for name != "." {
		parent := path.Dir(name)
		if children[parent] == nil {
			children[parent] = map[string]struct{}{}
		}
		children[parent][path.Base(name)] = struct{}{}
		name = parent
	}
}

// Open implements fs.FS.
func (f *FS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if entry, ok := f.files[name]; ok {
		return &file{
			Reader: *bytes.NewReader(entry.data),
			info:   f.fileInfo(name, entry),
		}, nil
	}
	if _, ok := f.dirs[name]; ok {
		return &dirFile{info: f.dirInfo(name), entries: f.dirEntries(name)}, nil
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// ReadFile implements fs.ReadFileFS.
func (f *FS) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}
	entry, ok := f.files[name]
	if !ok {
		if _, isDir := f.dirs[name]; isDir {
			return nil, &fs.PathError{Op: "readfile", Path: name, Err: errors.New("is a directory")}
		}
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(entry.data))
	copy(out, entry.data)
	return out, nil
}

// ReadDir implements fs.ReadDirFS.
func (f *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	if _, ok := f.dirs[name]; !ok {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	return f.dirEntries(name), nil
}

// Stat implements fs.StatFS.
func (f *FS) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	if entry, ok := f.files[name]; ok {
		return f.fileInfo(name, entry), nil
	}
	if _, ok := f.dirs[name]; ok {
		return f.dirInfo(name), nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

func (f *FS) fileInfo(name string, entry *fileEntry) *fileInfo {
	return &fileInfo{
		name:    path.Base(name),
		size:    int64(len(entry.data)),
		mode:    entry.mode,
		modTime: entry.modTime,
	}
}

func (f *FS) dirInfo(name string) *fileInfo {
	return &fileInfo{
		name: path.Base(name),
		mode: fs.ModeDir | 0o755,
	}
}

func (f *FS) dirEntries(name string) []fs.DirEntry {
	names := f.dirs[name]
	entries := make([]fs.DirEntry, 0, len(names))
	for _, child := range names {
		full := child
		if name != "." {
			full = name + "/" + child
		}
		if entry, ok := f.files[full]; ok {
			entries = append(entries, dirEntry{f.fileInfo(full, entry)})
			continue
		}
		entries = append(entries, dirEntry{f.dirInfo(full)})
	}
	return entries
}

// file is an open regular file backed by the bundle's decoded content.
type file struct {
	bytes.Reader
	info *fileInfo
}

func (f *file) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *file) Close() error               { return nil }

// dirFile is an open directory supporting paged ReadDir.
type dirFile struct {
	info    *fileInfo
	entries []fs.DirEntry
	offset  int
}

func (d *dirFile) Stat() (fs.FileInfo, error) { return d.info, nil }
func (d *dirFile) Close() error               { return nil }

func (d *dirFile) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.info.name, Err: errors.New("is a directory")}
}

func (d *dirFile) ReadDir(n int) ([]fs.DirEntry, error) {
	remaining := len(d.entries) - d.offset
	if n <= 0 {
		entries := d.entries[d.offset:]
		d.offset = len(d.entries)
		return entries, nil
	}
	if remaining == 0 {
		return nil, io.EOF
	}
	if n > remaining {
		n = remaining
	}
	entries := d.entries[d.offset : d.offset+n]
	d.offset += n
	return entries, nil
}

type fileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (i *fileInfo) Name() string       { return i.name }
func (i *fileInfo) Size() int64        { return i.size }
func (i *fileInfo) Mode() fs.FileMode  { return i.mode }
func (i *fileInfo) ModTime() time.Time { return i.modTime }
func (i *fileInfo) IsDir() bool        { return i.mode.IsDir() }
func (i *fileInfo) Sys() any           { return nil }

type dirEntry struct {
	info *fileInfo
}

func (e dirEntry) Name() string               { return e.info.name }
func (e dirEntry) IsDir() bool                { return e.info.IsDir() }
func (e dirEntry) Type() fs.FileMode          { return e.info.mode.Type() }
func (e dirEntry) Info() (fs.FileInfo, error) { return e.info, nil }
