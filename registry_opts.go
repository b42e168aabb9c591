package pkgdata

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithTempDir sets the directory under which extractions are created.
// Defaults to os.TempDir(). The directory itself is never deleted.
func WithTempDir(dir string) RegistryOption {
	return func(r *Registry) {
		r.tempDir = dir
	}
}

// WithLogger attaches an event logger to the registry. Cleanup failures are
// reported through it at close time instead of being raised.
func WithLogger(logger EventLogger) RegistryOption {
	return func(r *Registry) {
		if logger == nil {
			r.logger = noopLogger{}
			return
		}
		r.logger = logger
	}
}
