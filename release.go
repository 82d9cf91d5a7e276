package using

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/errgroup"
)

// group joins concurrently dispatched releases.
type group interface {
	Go(fn func(ctx context.Context) error)
	Wait() error
}

// failFastGroup adapts errgroup to group. Wait reports the first failing
// release; siblings keep the uncancelled context and run to completion.
type failFastGroup struct {
	g   errgroup.Group
	ctx context.Context
}

func (f *failFastGroup) Go(fn func(ctx context.Context) error) {
	f.g.Go(func() error { return fn(f.ctx) })
}

func (f *failFastGroup) Wait() error {
	return f.g.Wait()
}

// cleanup holds the state of one cleanup phase.
type cleanup struct {
	cfg config

	panicMu sync.Mutex
	panics  []*PanicError
}

func newCleanup(cfg config) *cleanup {
	return &cleanup{cfg: cfg}
}

// run releases resource according to the configured method. A resource
// that is releasable itself is released directly; otherwise its members
// are released concurrently.
func (c *cleanup) run(ctx context.Context, resource any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithoutCancel(ctx)
	method := c.cfg.method

	if fn, ok := releaserFor(resource, method); ok {
		return c.call(ctx, ReleaseInfo{Method: method}, fn)
	}

	set, ok := members(resource)
	if !ok {
		if c.cfg.strict {
			return &UnreleasableError{Method: method, Set: render(resource)}
		}
		c.cfg.logger.DebugContext(ctx, "resource not releasable, skipping",
			"method", method.String(),
			"type", fmt.Sprintf("%T", resource),
		)
		return nil
	}

	return c.fanOut(ctx, resource, set)
}

func (c *cleanup) fanOut(ctx context.Context, resource any, set Set) error {
	method := c.cfg.method
	g := c.newGroup(ctx)

	for _, name := range unexportedFields(resource) {
		c.cfg.logger.DebugContext(ctx, "member not releasable, unexported field not inspected",
			"method", method.String(),
			"member", name,
		)
	}

	var unreleasable error
	for _, n := range set {
		fn, ok := releaserFor(n.Resource, method)
		if !ok {
			if c.cfg.strict {
				unreleasable = &UnreleasableError{Method: method, Name: n.Name, Set: render(resource)}
				break
			}
			c.cfg.logger.DebugContext(ctx, "member not releasable, skipping",
				"method", method.String(),
				"member", n.Name,
				"type", fmt.Sprintf("%T", n.Resource),
			)
			continue
		}

		info := ReleaseInfo{Name: n.Name, Method: method}
		g.Go(func(ctx context.Context) error {
			return c.call(ctx, info, fn)
		})
	}

	err := g.Wait()
	if unreleasable == nil {
		return err
	}
	if c.cfg.policy == FailFast {
		return unreleasable
	}
	return errors.Join(unreleasable, err)
}

func (c *cleanup) newGroup(ctx context.Context) group {
	switch c.cfg.policy {
	case Collect:
		p := pool.New()
		if c.cfg.limit > 0 {
			p = p.WithMaxGoroutines(c.cfg.limit)
		}
		return p.WithErrors().WithContext(ctx)
	default:
		g := &failFastGroup{ctx: ctx}
		if c.cfg.limit > 0 {
			g.g.SetLimit(c.cfg.limit)
		}
		return g
	}
}

// call performs one release with hooks and panic recovery.
func (c *cleanup) call(ctx context.Context, info ReleaseInfo, fn releaseFunc) error {
	start := time.Now()
	err := c.exec(ctx, func(ctx context.Context) error {
		if c.cfg.onStart != nil {
			c.cfg.onStart(info)
		}
		return fn(ctx)
	})
	elapsed := time.Since(start)

	if c.cfg.onDone != nil {
		hookErr := c.exec(ctx, func(context.Context) error {
			c.cfg.onDone(info, err, elapsed)
			return nil
		})
		switch {
		case hookErr == nil:
		case err == nil:
			err = hookErr
		default:
			err = errors.Join(err, hookErr)
		}
	}

	if err == nil {
		return nil
	}
	c.cfg.logger.DebugContext(ctx, "release failed",
		"method", info.Method.String(),
		"member", info.Name,
		"error", err,
	)
	return &ReleaseError{Resource: info, Err: err}
}

// exec runs fn with panic recovery.
func (c *cleanup) exec(ctx context.Context, fn releaseFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			pe := newPanicError(r)
			if c.cfg.panicAsErr {
				err = pe
				return
			}
			c.panicMu.Lock()
			c.panics = append(c.panics, pe)
			c.panicMu.Unlock()
		}
	}()
	return fn(ctx)
}

// firstPanic returns the first release panic that was not converted to an
// error, or nil.
func (c *cleanup) firstPanic() *PanicError {
	c.panicMu.Lock()
	defer c.panicMu.Unlock()

	if len(c.panics) == 0 {
		return nil
	}
	return c.panics[0]
}
