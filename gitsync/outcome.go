package gitsync

import "github.com/go-git/go-git/v5/plumbing"

// OutcomeKind tags the result of one sync cycle.
type OutcomeKind int

const (
	// NoChange means the fetched remote head equals the local HEAD;
	// the working tree was not touched.
	NoChange OutcomeKind = iota
	// FastForwarded means the local branch pointer and working tree
	// were advanced to the fetched commit.
	FastForwarded
	// Failed means the cycle ended with an error; the working tree was
	// not modified.
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case NoChange:
		return "no-change"
	case FastForwarded:
		return "fast-forwarded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// HookResult records the execution of the on_change hook. A non-zero
// ExitCode is an anomaly, not a sync failure; SpawnErr is set only when
// the shell could not be launched at all.
type HookResult struct {
	ExitCode int
	SpawnErr error
}

// Outcome is the result of one sync cycle. It is used for logging and
// tests and is not retained between cycles.
type Outcome struct {
	Kind OutcomeKind

	// From and To are set when Kind is FastForwarded.
	From plumbing.Hash
	To   plumbing.Hash

	// Hook is non-nil when the on_change hook was invoked.
	Hook *HookResult

	// Err is set when Kind is Failed.
	Err error
}
