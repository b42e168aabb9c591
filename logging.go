package pkgdata

// Event describes a registry operation for logging.
type Event struct {
	// Op is the operation that produced the event: "materialize" or "cleanup".
	Op string

	// Anchor is the anchor name, when known.
	Anchor string

	// Path is the filesystem path involved.
	Path string

	// Err is the error encountered, if any. Cleanup errors are reported
	// here and never raised.
	Err error
}

// EventLogger records registry events.
type EventLogger interface {
	LogEvent(Event)
}

// EventLoggerFunc adapts a function to EventLogger.
type EventLoggerFunc func(Event)

// LogEvent implements EventLogger.
func (f EventLoggerFunc) LogEvent(event Event) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogEvent(Event) {}
