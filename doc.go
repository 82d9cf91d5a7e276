// Package using runs an operation with one or more resources and
// guarantees that the resources are released afterwards.
//
// # Running an Operation
//
// [Do] calls an operation with a resource, then releases the resource on
// every exit path: normal return, returned error, or panic.
//
//	body, err := using.Do(ctx, conn, func(ctx context.Context, c *Conn) ([]byte, error) {
//	    return c.Fetch(ctx, "/status")
//	})
//
// [Run] is the same for operations without a result, and [Release] runs only
// the cleanup phase.
//
// # Release Methods
//
// A resource is releasable when it exposes the configured release method.
// [MethodDispose] (the default) looks for Dispose, [MethodDestroy] for
// Destroy. Each accepts three shapes:
//
//	Dispose()
//	Dispose() error
//	Dispose(ctx context.Context) error
//
// The check is a runtime interface query ([CanRelease]), so a type needs no
// declaration beyond the method itself. [DisposeFunc] and [DestroyFunc]
// adapt plain functions. One call uses exactly one method; a member that
// only has Destroy is not releasable under [MethodDispose].
//
// # Resource Sets
//
// When the resource is not releasable itself, it is treated as a set of
// named resources:
//
//   - a [Set], built directly or with [Map];
//   - a map with string keys;
//   - a struct, or pointer to struct, whose exported fields are members.
//
// A nil member (nil pointer, func, map, slice, channel or interface) is absent:
// it is skipped, or reported by [WithStrict]. Unexported struct fields
// cannot be read and are never released, even in strict mode; each one is
// noted in a debug log record.
//
// Every releasable member is released concurrently and all releases finish
// before [Do] returns. Members without the method are skipped, or, with
// [WithStrict], dispatch stops and an [*UnreleasableError] is returned.
// Releases already dispatched before that point are still waited for.
//
// # Error Policies
//
//   - [FailFast] (default): the first release failure is returned. The
//     other releases are not cancelled; they run to completion with the
//     same context as before.
//   - [Collect]: every release failure is returned, joined via [errors.Join].
//
// Release failures are wrapped in [*ReleaseError]. Use [IsReleaseError],
// [ReleaseOf], [CauseOf], and [AllReleaseErrors] to inspect them;
// [AllUnreleasable] lists strict-mode failures.
//
// When both the operation and cleanup fail, [Do] returns
// errors.Join(operationErr, cleanupErr).
//
// # Panic Recovery
//
// A panic in the operation is re-raised after cleanup. A panic in a release
// call is captured with its stack trace and re-raised as [*PanicError] once
// all releases have finished. [WithPanicAsError] turns both into returned
// errors instead.
//
// # Observability
//
// [WithOnStart] and [WithOnDone] register per-release hooks, and
// [WithLogger] sets the [log/slog] logger used for debug records.
package using
