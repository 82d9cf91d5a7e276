package using

import (
	"log/slog"
	"time"
)

// Method selects which release operation is invoked during cleanup.
// A single call to [Do] uses exactly one Method for every resource.
type Method int

const (
	// MethodDispose releases resources through their Dispose method.
	MethodDispose Method = iota

	// MethodDestroy releases resources through their Destroy method.
	MethodDestroy
)

// String returns the name of the release operation, "dispose" or "destroy".
func (m Method) String() string {
	switch m {
	case MethodDispose:
		return "dispose"
	case MethodDestroy:
		return "destroy"
	default:
		return "unknown"
	}
}

// Policy determines how the cleanup phase reports release failures when
// several resources are released concurrently.
type Policy int

const (
	// FailFast reports the first release failure and cancels the context
	// handed to context-aware releasers that are still running.
	// Every dispatched release is still waited for.
	FailFast Policy = iota

	// Collect waits for every release and reports all failures joined
	// via [errors.Join].
	Collect
)

// ReleaseInfo describes a single release call.
// It is passed to hooks registered via [WithOnStart] and [WithOnDone].
type ReleaseInfo struct {
	// Name is the member name within a resource set, or empty when the
	// resource was released directly.
	Name   string
	Method Method
}

type config struct {
	method     Method
	strict     bool
	policy     Policy
	limit      int
	panicAsErr bool
	onStart    func(ReleaseInfo)
	onDone     func(ReleaseInfo, error, time.Duration)
	logger     *slog.Logger
}

// Option configures a call to [Do], [Run] or [Release].
type Option func(*config)

func defaultConfig() config {
	return config{
		method: MethodDispose,
		policy: FailFast,
		logger: slog.Default(),
	}
}

func newConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithMethod sets the release method. The default is [MethodDispose].
// It panics if m is not a known Method value.
func WithMethod(m Method) Option {
	return func(c *config) {
		switch m {
		case MethodDispose, MethodDestroy:
			c.method = m
		default:
			panic("using: invalid method")
		}
	}
}

// WithStrict makes a resource set member without the configured release
// method an error instead of being skipped.
func WithStrict() Option {
	return func(c *config) {
		c.strict = true
	}
}

// WithPolicy sets the failure policy for concurrent releases.
// It panics if p is not a known Policy value.
func WithPolicy(p Policy) Option {
	return func(c *config) {
		switch p {
		case FailFast, Collect:
			c.policy = p
		default:
			panic("using: invalid policy")
		}
	}
}

// WithLimit sets the maximum number of releases that run concurrently.
//
// A limit of zero (the default) means unlimited concurrency.
// WithLimit panics if n is negative.
func WithLimit(n int) Option {
	return func(c *config) {
		if n < 0 {
			panic("using: limit must be non-negative")
		}
		c.limit = n
	}
}

// WithPanicAsError converts panics in the operation or in a release call
// to [*PanicError] values returned as regular errors, instead of
// re-raising them once cleanup has finished.
func WithPanicAsError() Option {
	return func(c *config) {
		c.panicAsErr = true
	}
}

// WithOnStart registers a hook invoked right before each release call.
// For resource sets the hook runs inside the release goroutine.
func WithOnStart(fn func(ReleaseInfo)) Option {
	return func(c *config) {
		c.onStart = fn
	}
}

// WithOnDone registers a hook invoked after each release call with its
// error (nil on success) and wall-clock duration.
func WithOnDone(fn func(ReleaseInfo, error, time.Duration)) Option {
	return func(c *config) {
		c.onDone = fn
	}
}

// WithLogger sets the logger used for debug diagnostics.
// A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
