package group

// ErrorMode defines how the Group handles errors from goroutines
type ErrorMode int

const (
	// CollectAll collects all errors and returns them as an aggregate
	CollectAll ErrorMode = iota
	// FailFast cancels the group context on first error and returns it
	FailFast
)

// Config holds configuration for a Group
type Config struct {
	errorMode  ErrorMode
	pinThreads bool
}

// Option configures a Group
type Option func(*Config)

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		errorMode: CollectAll,
	}
}

// BuildConfig applies opts over the defaults.
func BuildConfig(opts []Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithErrorMode sets how errors are handled
func WithErrorMode(mode ErrorMode) Option {
	return func(c *Config) {
		c.errorMode = mode
	}
}

// WithPinnedThreads locks each goroutine to its own OS thread.
func WithPinnedThreads(pin bool) Option {
	return func(c *Config) {
		c.pinThreads = pin
	}
}
