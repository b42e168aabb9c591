package pkgdata

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithRegistry directs the loader's Cached calls at a specific registry
// instead of the process-wide default. Identities materialized through
// different registries are independent.
func WithRegistry(reg *Registry) LoaderOption {
	return func(l *Loader) {
		if reg == nil {
			return
		}
		l.reg = reg
	}
}
