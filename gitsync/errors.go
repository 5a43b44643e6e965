package gitsync

import "fmt"

// FetchError covers network, protocol and remote-side failures of the
// fetch step. It is transient: the supervisor retries on the next tick.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch from %s failed: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RepositoryStateError covers a bad local checkout: missing directory,
// no origin remote, detached or corrupt ref state. Missing is set when
// the checkout directory itself is gone, which a supervisor treats as
// unrecoverable.
type RepositoryStateError struct {
	Path    string
	Missing bool
	Err     error
}

func (e *RepositoryStateError) Error() string {
	return fmt.Sprintf("repository state error at %s: %v", e.Path, e.Err)
}

func (e *RepositoryStateError) Unwrap() error { return e.Err }

// HookSpawnError means the shell for the on_change hook could not be
// launched at all, as opposed to the hook running and exiting non-zero.
type HookSpawnError struct {
	Command string
	Err     error
}

func (e *HookSpawnError) Error() string {
	return fmt.Sprintf("failed to spawn hook %q: %v", e.Command, e.Err)
}

func (e *HookSpawnError) Unwrap() error { return e.Err }
