package using

import (
	"context"
	"reflect"
)

// Disposable is a resource released through Dispose.
//
// The capability check also accepts Dispose() without a result and
// Dispose(context.Context) error.
type Disposable interface {
	Dispose() error
}

// Destroyable is a resource released through Destroy.
//
// The capability check also accepts Destroy() without a result and
// Destroy(context.Context) error.
type Destroyable interface {
	Destroy() error
}

// DisposeFunc adapts a plain function to [Disposable].
type DisposeFunc func() error

// Dispose calls f.
func (f DisposeFunc) Dispose() error { return f() }

// DestroyFunc adapts a plain function to [Destroyable].
type DestroyFunc func() error

// Destroy calls f.
func (f DestroyFunc) Destroy() error { return f() }

type releaseFunc func(ctx context.Context) error

// CanRelease reports whether v exposes the release operation named by m.
// It never panics. A nil v, including a nil pointer, func, map, channel or
// interface held in v, reports false: it is an absent resource.
func CanRelease(v any, m Method) bool {
	_, ok := releaserFor(v, m)
	return ok
}

func releaserFor(v any, m Method) (releaseFunc, bool) {
	if isNil(v) {
		return nil, false
	}

	switch m {
	case MethodDispose:
		switch r := v.(type) {
		case interface{ Dispose(context.Context) error }:
			return r.Dispose, true
		case interface{ Dispose() error }:
			return func(context.Context) error { return r.Dispose() }, true
		case interface{ Dispose() }:
			return func(context.Context) error { r.Dispose(); return nil }, true
		}
	case MethodDestroy:
		switch r := v.(type) {
		case interface{ Destroy(context.Context) error }:
			return r.Destroy, true
		case interface{ Destroy() error }:
			return func(context.Context) error { return r.Destroy() }, true
		case interface{ Destroy() }:
			return func(context.Context) error { r.Destroy(); return nil }, true
		}
	}

	return nil, false
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Chan, reflect.Interface, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
