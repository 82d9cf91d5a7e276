package using

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReleaseError_Error(t *testing.T) {
	cause := errors.New("connection reset")

	member := &ReleaseError{Resource: ReleaseInfo{Name: "db", Method: MethodDispose}, Err: cause}
	assert.EqualError(t, member, `dispose "db" failed: connection reset`)
	assert.Same(t, cause, member.Unwrap())

	single := &ReleaseError{Resource: ReleaseInfo{Method: MethodDestroy}, Err: cause}
	assert.EqualError(t, single, `destroy failed: connection reset`)
}

func TestUnreleasableError_Error(t *testing.T) {
	assert.EqualError(t,
		&UnreleasableError{Method: MethodDestroy, Name: "b", Set: "{a: *x.A, b: *x.B}"},
		`unable to destroy resource "b" in '{a: *x.A, b: *x.B}'`)
	assert.EqualError(t,
		&UnreleasableError{Method: MethodDispose, Set: "int"},
		`unable to dispose resource 'int'`)
}

// cleanupFailure mimics what Do returns when the operation and cleanup
// both fail under Collect with strict mode.
func cleanupFailure() (opErr error, re1, re2 *ReleaseError, ue *UnreleasableError, joined error) {
	opErr = errors.New("operation failed")
	re1 = &ReleaseError{Resource: ReleaseInfo{Name: "db", Method: MethodDispose}, Err: errors.New("busy")}
	re2 = &ReleaseError{Resource: ReleaseInfo{Name: "cache", Method: MethodDispose}, Err: errors.New("closed")}
	ue = &UnreleasableError{Method: MethodDispose, Name: "label", Set: "{...}"}
	joined = errors.Join(opErr, errors.Join(ue, errors.Join(re1, re2)))
	return
}

func TestIsReleaseError(t *testing.T) {
	_, re1, _, ue, joined := cleanupFailure()

	assert.False(t, IsReleaseError(nil))
	assert.False(t, IsReleaseError(errors.New("standard")))
	assert.False(t, IsReleaseError(ue))
	assert.True(t, IsReleaseError(re1))
	assert.True(t, IsReleaseError(fmt.Errorf("wrapped: %w", re1)))
	assert.True(t, IsReleaseError(joined))
}

func TestReleaseOf(t *testing.T) {
	_, re1, _, ue, joined := cleanupFailure()

	tests := []struct {
		name     string
		err      error
		wantInfo ReleaseInfo
		wantOk   bool
	}{
		{name: "nil error"},
		{name: "operation error only", err: errors.New("operation failed")},
		{name: "release call failed", err: re1, wantInfo: re1.Resource, wantOk: true},
		{name: "strict mode member", err: ue, wantInfo: ReleaseInfo{Name: "label", Method: MethodDispose}, wantOk: true},
		{name: "first cleanup failure wins", err: joined, wantInfo: ReleaseInfo{Name: "label", Method: MethodDispose}, wantOk: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := ReleaseOf(tt.err)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantInfo, info)
		})
	}
}

func TestCauseOf(t *testing.T) {
	opErr, re1, _, ue, joined := cleanupFailure()

	assert.Nil(t, CauseOf(nil))
	assert.Same(t, opErr, CauseOf(opErr))
	assert.Same(t, ue, CauseOf(ue))
	assert.Equal(t, re1.Err, CauseOf(joined))
}

func TestAllReleaseErrors(t *testing.T) {
	_, re1, re2, _, joined := cleanupFailure()

	assert.Nil(t, AllReleaseErrors(nil))
	assert.Nil(t, AllReleaseErrors(errors.New("standard")))
	assert.Equal(t, []*ReleaseError{re1, re2}, AllReleaseErrors(joined))

	outer := &ReleaseError{Resource: ReleaseInfo{Name: "outer"}, Err: re1}
	assert.Equal(t, []*ReleaseError{outer, re2}, AllReleaseErrors(errors.Join(outer, re2)),
		"a ReleaseError wrapping another is reported once")
}

func TestAllUnreleasable(t *testing.T) {
	_, _, _, ue, joined := cleanupFailure()

	assert.Nil(t, AllUnreleasable(nil))
	got := AllUnreleasable(joined)
	require.Len(t, got, 1)
	assert.Same(t, ue, got[0])
}

func TestPanicError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	assert.Same(t, cause, newPanicError(cause).Unwrap())
	assert.Nil(t, newPanicError("text").Unwrap())
}
