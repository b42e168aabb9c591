package pkgdata

import "errors"

// Sentinel errors.
var (
	// ErrUnknownAnchor is returned when a name does not resolve to a
	// registered anchor.
	ErrUnknownAnchor = errors.New("pkgdata: unknown anchor")

	// ErrAnchorExists is returned when registering a name that is already
	// taken by another anchor.
	ErrAnchorExists = errors.New("pkgdata: anchor already registered")

	// ErrNotFound is returned when the requested segments do not exist
	// within the anchor's namespace.
	ErrNotFound = errors.New("pkgdata: resource not found")

	// ErrRegistryClosed is returned when materialization is requested
	// after the registry has been closed.
	ErrRegistryClosed = errors.New("pkgdata: registry closed")
)
