package framework

import "errors"

// ThreadSafety describes the thread safety level a problem or algorithm
// guarantees for its own state.
type ThreadSafety int

const (
	// None: concurrent operations on distinct instances of the same
	// underlying resource are unsafe.
	None ThreadSafety = iota
	// Basic: concurrent operations on distinct instances are safe.
	Basic
)

func (ts ThreadSafety) String() string {
	switch ts {
	case None:
		return "none"
	case Basic:
		return "basic"
	default:
		return "unknown"
	}
}

// Shared error kinds. Callers match with errors.Is.
var (
	// ErrInvalidArgument marks usage errors: mismatched dimensions,
	// out-of-range indices, malformed reference points.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrThreadSafety marks attempts to run a component on an executor
	// whose concurrency model the component does not support.
	ErrThreadSafety = errors.New("thread safety violation")
	// ErrInternal marks internal invariant violations. The operation fails,
	// the process survives.
	ErrInternal = errors.New("internal invariant violation")
)

// ObjectiveSpacePoint represents an N-dimensional point in the objective space.
// As an example, for a problem with 2 objective functions f1 and f2, a point
// in the objective space could be [f1(x'), f2(x')], for the input of x'.
type ObjectiveSpacePoint []float64

// LogLine is one per-generation record of an algorithm's evolution log.
type LogLine struct {
	Gen    int     `json:"gen"`
	Fevals uint64  `json:"fevals"`
	Best   float64 `json:"best"`
}
