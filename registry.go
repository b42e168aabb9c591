package pkgdata

import (
	"errors"
	"path"
	"sync"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/singleflight"
)

// Registry owns every resource materialized for the life of the process.
//
// Each distinct (anchor, segments) identity is materialized at most once;
// repeated and concurrent requests for the same identity return the same
// path without touching the filesystem. The registry exclusively owns the
// extractions it creates and releases them in reverse-acquisition order
// when closed.
//
// Most programs use the process-wide default registry through
// [Loader.Cached] and release it with [Shutdown]. Tests that need isolation
// construct their own with [NewRegistry].
type Registry struct {
	tempDir string
	logger  EventLogger

	group singleflight.Group

	mu     sync.Mutex
	paths  map[digest.Digest]string
	scopes []*ScopedPath
	closed bool

	closeOnce sync.Once
	closeErr  error
}

// NewRegistry creates an empty materialization registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		logger: noopLogger{},
		paths:  make(map[digest.Digest]string),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by loaders unless
// overridden with [WithRegistry].
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Shutdown closes the process-wide default registry, deleting every
// extraction it owns. Intended to be deferred from main:
//
//	defer pkgdata.Shutdown()
//
// Cleanup does not run on abnormal termination.
func Shutdown() error {
	return defaultRegistry.Close()
}

// Cached materializes the identified resource with process lifetime.
//
// The first call for an identity resolves and extracts the resource;
// every subsequent call returns the stored path with no filesystem work.
// Concurrent first-time calls for the same identity share one
// materialization. Calls for unrelated identities never block each other
// beyond map access.
//
// Failed materializations are not cached; a later call retries.
func (r *Registry) Cached(anchor string, segments ...string) (string, error) {
	name, err := joinSegments(segments)
	if err != nil {
		return "", err
	}
	key := identityKey(anchor, name)

	// Fast path: already materialized.
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return "", ErrRegistryClosed
	}
	if p, ok := r.paths[key]; ok {
		r.mu.Unlock()
		return p, nil
	}
	r.mu.Unlock()

	result, err, _ := r.group.Do(string(key), func() (any, error) {
		// Double-check: another goroutine may have materialized this
		// identity between the fast path and acquiring the flight.
		r.mu.Lock()
		if p, ok := r.paths[key]; ok {
			r.mu.Unlock()
			return p, nil
		}
		r.mu.Unlock()

		entry, err := lookupAnchor(anchor)
		if err != nil {
			return nil, err
		}
		sp, err := materialize(entry, anchor, name, r.tempDir)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			_ = sp.Close()
			return nil, ErrRegistryClosed
		}
		r.paths[key] = sp.Path()
		r.scopes = append(r.scopes, sp)
		r.mu.Unlock()

		r.logger.LogEvent(Event{Op: "materialize", Anchor: anchor, Path: sp.Path()})
		return sp.Path(), nil
	})
	if err != nil {
		return "", err
	}

	p, _ := result.(string)
	return p, nil
}

// Len returns the number of identities currently materialized.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

// Close releases every materialization owned by the registry, in reverse
// order of acquisition. Cleanup is best-effort: failures are reported to
// the registry's logger and collected in the returned error, and paths that
// were already removed externally are tolerated. Close is idempotent;
// subsequent calls return nil and perform no work.
func (r *Registry) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		scopes := r.scopes
		r.scopes = nil
		r.mu.Unlock()

		var errs []error
		for i := len(scopes) - 1; i >= 0; i-- {
			sp := scopes[i]
			if cerr := sp.Close(); cerr != nil {
				r.logger.LogEvent(Event{Op: "cleanup", Path: sp.Path(), Err: cerr})
				errs = append(errs, cerr)
			}
		}
		r.closeErr = errors.Join(errs...)
		err = r.closeErr
	})
	return err
}

// identityKey derives the cache key for an (anchor, name) identity.
// The key depends only on the anchor name and the joined segments, never on
// the loader or fs.FS instance that requested it.
func identityKey(anchor, name string) digest.Digest {
	return digest.FromString(anchor + "\n" + path.Clean(name))
}
