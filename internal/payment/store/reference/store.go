// Package reference tracks payment references that have already been
// accepted. A reference is committed at most once for the lifetime of the
// installation; entries are never removed.
package reference

import "context"

// Registry is the uniqueness store behind duplicate detection.
//
// Contains is the advisory read the security checker uses to report the
// duplicate_reference result without side effects. TryCommit is the single
// atomic test-and-insert the orchestrator uses to spend a reference; a
// separate check-then-insert sequence would reintroduce the duplicate race.
type Registry interface {
	// Contains reports whether the reference was previously committed.
	Contains(ctx context.Context, reference string) (bool, error)

	// TryCommit atomically records the reference if absent. Returns true when
	// the reference was new and is now recorded, false when it was already
	// taken.
	TryCommit(ctx context.Context, reference string) (bool, error)
}
