package pkgdata

import (
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnknownAnchor(t *testing.T) {
	t.Parallel()

	_, err := New("no/such/anchor")
	require.ErrorIs(t, err, ErrUnknownAnchor)
}

func TestLoaderReadable(t *testing.T) {
	t.Parallel()

	l, _ := newTestLoader(t, map[string]string{
		"data/resource.ext": "payload",
		"data/nested/x.txt": "x",
	})

	r, err := l.Readable("data", "resource.ext")
	require.NoError(t, err)
	assert.Equal(t, "data/resource.ext", r.Name())
	assert.Equal(t, l.Anchor(), r.Anchor())

	content, err := r.ReadFile()
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))

	f, err := r.Open()
	require.NoError(t, err)
	defer f.Close()
	streamed, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(streamed))
}

func TestLoaderReadableDirectory(t *testing.T) {
	t.Parallel()

	l, _ := newTestLoader(t, map[string]string{
		"data/a.txt": "a",
		"data/b.txt": "b",
	})

	dir, err := l.Readable("data")
	require.NoError(t, err)
	assert.True(t, dir.IsDir())

	entries, err := dir.ReadDir()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.txt", entries[0].Name())
	assert.Equal(t, "b.txt", entries[1].Name())

	// Join reaches into the directory without re-resolving the anchor.
	child := dir.Join("a.txt")
	content, err := child.ReadFile()
	require.NoError(t, err)
	assert.Equal(t, "a", string(content))
}

func TestLoaderReadableNonexistent(t *testing.T) {
	t.Parallel()

	l, _ := newTestLoader(t, map[string]string{"file.txt": "content"})

	// The handle itself resolves without touching the filesystem.
	r, err := l.Readable("missing.txt")
	require.NoError(t, err)
	assert.False(t, r.Exists())

	_, err = r.ReadFile()
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoaderReadableRoot(t *testing.T) {
	t.Parallel()

	l, _ := newTestLoader(t, map[string]string{"file.txt": "content"})

	root, err := l.Readable()
	require.NoError(t, err)
	assert.Equal(t, ".", root.Name())
	assert.True(t, root.IsDir())
}

func TestLoaderLoadAliasesCached(t *testing.T) {
	t.Parallel()

	l, _ := newTestLoader(t, map[string]string{"file.txt": "content"})

	viaLoad, err := l.Load("file.txt")
	require.NoError(t, err)
	viaCached, err := l.Cached("file.txt")
	require.NoError(t, err)
	assert.Equal(t, viaCached, viaLoad)
}

func TestLoaderMustCached(t *testing.T) {
	t.Parallel()

	l, _ := newTestLoader(t, map[string]string{"file.txt": "content"})

	assert.FileExists(t, l.MustCached("file.txt"))
	assert.Panics(t, func() { l.MustCached("missing.txt") })
}

func TestLoaderDescribe(t *testing.T) {
	t.Parallel()

	l, _ := newTestLoader(t, map[string]string{
		"visible.txt":    "v",
		"data/x.txt":     "x",
		".hidden":        "h",
		"_private/y.txt": "y",
		"tests/t.txt":    "t",
	})

	desc := l.Describe()
	assert.Contains(t, desc, "  * data/\n")
	assert.Contains(t, desc, "  * visible.txt\n")
	assert.NotContains(t, desc, ".hidden")
	assert.NotContains(t, desc, "_private")
	assert.NotContains(t, desc, "tests")

	// Entries are sorted.
	assert.Less(t, strings.Index(desc, "data/"), strings.Index(desc, "visible.txt"))

	// Memoized: same string on every call.
	assert.Equal(t, desc, l.Describe())
}

func TestLoaderBundleAnchor(t *testing.T) {
	t.Parallel()

	bundle := buildBundle(t, map[string]string{
		"templates/report.html": "<html></html>",
		"config.json":           "{}",
	})
	name := "test/" + t.Name() + "/" + uuid.NewString()
	require.NoError(t, RegisterBundle(name, bundle))

	reg := NewRegistry()
	t.Cleanup(func() { _ = reg.Close() })

	l, err := New(name, WithRegistry(reg))
	require.NoError(t, err)

	r, err := l.Readable("config.json")
	require.NoError(t, err)
	content, err := r.ReadFile()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(content))

	p, err := l.Cached("templates", "report.html")
	require.NoError(t, err)
	assert.FileExists(t, p)
}
