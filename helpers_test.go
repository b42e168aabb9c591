package pkgdata

import (
	"archive/tar"
	"bytes"
	"io/fs"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

// registerTestAnchor registers a MapFS under a name unique to this process
// and returns the name. Anchors are process-global, so every test gets a
// fresh one.
func registerTestAnchor(t *testing.T, files map[string]string) string {
	t.Helper()
	name := "test/" + t.Name() + "/" + uuid.NewString()
	require.NoError(t, Register(name, mapFS(files)))
	return name
}

func mapFS(files map[string]string) fstest.MapFS {
	m := fstest.MapFS{}
	for p, content := range files {
		m[p] = &fstest.MapFile{Data: []byte(content), Mode: 0o644}
	}
	return m
}

// newTestLoader builds a loader over a fresh anchor and a private registry
// so tests never touch the process-wide default.
func newTestLoader(t *testing.T, files map[string]string) (*Loader, *Registry) {
	t.Helper()
	reg := NewRegistry()
	t.Cleanup(func() { _ = reg.Close() })

	name := registerTestAnchor(t, files)
	l, err := New(name, WithRegistry(reg))
	require.NoError(t, err)
	return l, reg
}

// buildBundle encodes files as a zstd-compressed tar bundle.
func buildBundle(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	require.NoError(t, err)

	tw := tar.NewWriter(enc)
	for p, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     p,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, enc.Close())
	return buf.Bytes()
}

// countingFS wraps an fs.FS and counts Open calls per path.
type countingFS struct {
	base  fs.FS
	opens openCounter
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.opens.add(name)
	return c.base.Open(name)
}

type openCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *openCounter) add(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[name]++
}

func (c *openCounter) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[name]
}
