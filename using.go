package using

import (
	"context"
	"errors"
)

// Do calls fn with resource and then releases resource, whether fn
// returned a value, returned an error, or panicked.
//
// Cleanup starts only after fn has returned. If resource itself exposes
// the configured release method it is released directly. Otherwise it is
// treated as a resource set ([Set], a map with string keys, or a struct)
// and every member is released concurrently; all releases finish before
// Do returns.
//
// Do returns whatever fn returned. When cleanup fails as well, the error is
// errors.Join(fnErr, cleanupErr), so the error from fn comes first and both
// remain reachable through errors.Is and errors.As. A panic in fn is
// re-raised after cleanup unless [WithPanicAsError] is set; it takes
// priority over release panics.
//
//	n, err := using.Do(ctx, conn, func(ctx context.Context, c *Conn) (int, error) {
//	    return c.Count(ctx)
//	})
func Do[R, T any](
	ctx context.Context,
	resource R,
	fn func(ctx context.Context, r R) (T, error),
	opts ...Option,
) (result T, err error) {
	if fn == nil {
		panic("using: fn must not be nil")
	}
	cfg := newConfig(opts)

	defer func() {
		// Capture a panic from fn before cleanup.
		fnPanic := recover()
		var fnPanicErr *PanicError
		if fnPanic != nil {
			fnPanicErr = newPanicError(fnPanic)
		}

		c := newCleanup(cfg)
		cleanupErr := c.run(ctx, resource)

		if fnPanic != nil {
			if !cfg.panicAsErr {
				panic(fnPanic)
			}
			err = fnPanicErr
		}
		if pe := c.firstPanic(); pe != nil {
			panic(pe)
		}

		switch {
		case cleanupErr == nil:
		case err == nil:
			err = cleanupErr
		default:
			err = errors.Join(err, cleanupErr)
		}
	}()

	return fn(ctx, resource)
}

// Run is [Do] for operations that produce no value.
func Run[R any](
	ctx context.Context,
	resource R,
	fn func(ctx context.Context, r R) error,
	opts ...Option,
) error {
	if fn == nil {
		panic("using: fn must not be nil")
	}
	_, err := Do(ctx, resource, func(ctx context.Context, r R) (struct{}, error) {
		return struct{}{}, fn(ctx, r)
	}, opts...)
	return err
}

// Release runs only the cleanup phase of [Do] for resource. It is useful
// in a defer when the guarded region is the caller's own function:
//
//	defer func() { err = errors.Join(err, using.Release(ctx, res)) }()
func Release(ctx context.Context, resource any, opts ...Option) error {
	c := newCleanup(newConfig(opts))
	err := c.run(ctx, resource)
	if pe := c.firstPanic(); pe != nil {
		panic(pe)
	}
	return err
}
