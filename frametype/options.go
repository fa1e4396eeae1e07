package frametype

import "runtime"

// Options configures joins and frame merges.
type Options struct {
	// Strict makes joining uninitialized-this with any other type a fatal
	// invariant violation instead of widening to one-word.
	Strict bool

	// EnableMemo caches reference joins per Joiner (default: true)
	EnableMemo bool

	// Parallelism bounds concurrent merges in frame.Merger.MergeMany.
	Parallelism int

	// Logging configuration
	LogLevel    string // "error", "warn", "info", "debug" (default: "warn")
	LogMaxSlots int    // Max slots to show when logging a frame (default: 8)

	// Logger overrides the logger built from LogLevel.
	Logger Logger
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Strict:      false,
		EnableMemo:  true,
		Parallelism: runtime.GOMAXPROCS(0),
		LogLevel:    "warn",
		LogMaxSlots: 8,
	}
}

// ResolveLogger returns the logger these options ask for: Logger if set,
// otherwise a stderr logger at LogLevel, or a noop logger when no level is
// configured.
func (o Options) ResolveLogger() Logger {
	if o.Logger != nil {
		return o.Logger
	}
	if o.LogLevel != "" {
		return NewLogger(ParseLogLevel(o.LogLevel), nil)
	}
	return newNoopLogger()
}
