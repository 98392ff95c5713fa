// Error kinds (§7).

package tweetabs_internal

import (
	"errors"
	"fmt"
)

// RemoteError wraps a transport/protocol/authentication failure from the
// RemoteApi layer. Non-fatal: the owning task retries after a backoff.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *RemoteError) Unwrap() error { return e.Err }

func NewRemoteError(op string, err error) *RemoteError {
	return &RemoteError{Op: op, Err: err}
}

// TypeMismatch is raised when an input's strip type is incompatible with
// the tab it's being wired into; rejected at wire-time, never afterward.
type TypeMismatch struct {
	Tab   *Tab
	Input *Tab
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("%s is not made of %s strips", e.Input, e.Tab.StripType())
}

// CycleError is raised when wiring a Difference tab's output would close a
// negative cycle (§4.8); rejected at wire-time.
type CycleError struct {
	From *Tab
	To   *Tab
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s -> %s: negative loop in tab plumbing", e.From, e.To)
}

// ErrNotFound is returned for operations on a tab no longer registered.
var ErrNotFound = errors.New("tab not found")

// ErrFatal signals an invariant violation; the scheduler does not catch it.
var ErrFatal = errors.New("fatal invariant violation")
