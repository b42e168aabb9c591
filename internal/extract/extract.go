// Package extract copies resources out of an fs.FS onto the local filesystem.
package extract

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// File copies a single file from fsys to dest. The destination must not
// already exist; its parent directory must.
func File(fsys fs.FS, name, dest string) error {
	src, err := fsys.Open(name)
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("copy %s: %w", name, err)
	}
	return out.Close()
}

// Dir copies the subtree rooted at root from fsys into dest, creating dest
// and any nested directories as needed.
func Dir(fsys fs.FS, root, dest string) error {
	return fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dest, filepath.FromSlash(rel(root, p)))
		if d.IsDir() {
			return os.MkdirAll(target, dirPerm)
		}
		return File(fsys, p, target)
	})
}

// rel returns p relative to root in slash form. p is always root itself or
// beneath it when produced by fs.WalkDir.
func rel(root, p string) string {
	if root == "." {
		if p == "." {
			return ""
		}
		return p
	}
	return strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
}
