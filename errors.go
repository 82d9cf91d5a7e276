package using

import (
	"errors"
	"fmt"
)

// ReleaseError wraps an error returned (or a panic raised) by a release
// call together with the [ReleaseInfo] of the resource that produced it.
type ReleaseError struct {
	Resource ReleaseInfo
	Err      error
}

func (e *ReleaseError) Error() string {
	if e.Resource.Name == "" {
		return fmt.Sprintf("%s failed: %v", e.Resource.Method, e.Err)
	}
	return fmt.Sprintf("%s %q failed: %v", e.Resource.Method, e.Resource.Name, e.Err)
}

func (e *ReleaseError) Unwrap() error {
	return e.Err
}

// UnreleasableError is returned in strict mode when a resource lacks the
// configured release method.
type UnreleasableError struct {
	Method Method

	// Name is the offending member, empty when the resource itself was
	// neither releasable nor a resource set.
	Name string

	// Set is a shallow rendering of the resource that was inspected.
	Set string
}

func (e *UnreleasableError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("unable to %s resource '%s'", e.Method, e.Set)
	}
	return fmt.Sprintf("unable to %s resource %q in '%s'", e.Method, e.Name, e.Set)
}

// IsReleaseError reports whether a release call failed somewhere in err.
func IsReleaseError(err error) bool {
	var re *ReleaseError
	return errors.As(err, &re)
}

// ReleaseOf names the resource behind the first cleanup failure in err:
// the member whose release call failed ([*ReleaseError]) or, in strict
// mode, the member that had no release method ([*UnreleasableError]).
func ReleaseOf(err error) (ReleaseInfo, bool) {
	for _, e := range walk(err) {
		switch e := e.(type) {
		case *ReleaseError:
			return e.Resource, true
		case *UnreleasableError:
			return ReleaseInfo{Name: e.Name, Method: e.Method}, true
		}
	}
	return ReleaseInfo{}, false
}

// CauseOf returns what the first failing release call returned.
// Errors without a [*ReleaseError] come back unchanged.
func CauseOf(err error) error {
	var re *ReleaseError
	if errors.As(err, &re) {
		return re.Err
	}
	return err
}

// AllReleaseErrors lists every failed release call in err, in the order
// errors.Join recorded them. An operation error joined in front by [Do]
// is skipped.
func AllReleaseErrors(err error) []*ReleaseError {
	var out []*ReleaseError
	for _, e := range walk(err) {
		if re, ok := e.(*ReleaseError); ok {
			out = append(out, re)
		}
	}
	return out
}

// AllUnreleasable lists the strict-mode failures in err. There is at most
// one per cleanup phase, but a caller joining several phases may see more.
func AllUnreleasable(err error) []*UnreleasableError {
	var out []*UnreleasableError
	for _, e := range walk(err) {
		if ue, ok := e.(*UnreleasableError); ok {
			out = append(out, ue)
		}
	}
	return out
}

// walk flattens err depth-first. It stops descending at cleanup errors so a
// ReleaseError wrapping another is reported once.
func walk(err error) []error {
	var out []error
	var visit func(error)
	visit = func(err error) {
		switch e := err.(type) {
		case nil:
		case *ReleaseError, *UnreleasableError:
			out = append(out, e)
		case interface{ Unwrap() []error }:
			for _, sub := range e.Unwrap() {
				visit(sub)
			}
		case interface{ Unwrap() error }:
			visit(e.Unwrap())
		}
	}
	visit(err)
	return out
}
