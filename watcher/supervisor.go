// Package watcher runs the per-repository poll loops and fans them out
// across all configured repositories.
package watcher

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/margo/repowatch/config"
	"github.com/margo/repowatch/gitsync"
)

// Supervisor owns the poll loop for a single repository. It invokes
// the engine once per tick and sleeps for the configured interval,
// measured from the end of one cycle to the start of the next.
type Supervisor struct {
	spec   config.RepositorySpec
	engine gitsync.Engine
	log    *zap.SugaredLogger
}

// NewSupervisor creates a Supervisor for one repository spec.
func NewSupervisor(spec config.RepositorySpec, engine gitsync.Engine, log *zap.SugaredLogger) *Supervisor {
	return &Supervisor{
		spec:   spec,
		engine: engine,
		log:    log.With("path", spec.Path, "branch", spec.Branch),
	}
}

// Run loops sync cycles until ctx is cancelled. Transient failures are
// logged and retried on the next tick; the loop terminates on its own
// only when the checkout directory itself has vanished, which cannot
// recover without operator intervention.
//
// Cancellation is honored between cycles, never inside one: an
// in-flight fetch or hook is allowed to finish so the ref store is not
// interrupted mid-write.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		syncID := uuid.NewString()
		outcome := s.engine.Sync(context.WithoutCancel(ctx), s.spec)
		s.report(syncID, outcome)

		if err := unrecoverable(outcome); err != nil {
			return err
		}

		timer := time.NewTimer(s.spec.PollInterval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (s *Supervisor) report(syncID string, outcome gitsync.Outcome) {
	switch outcome.Kind {
	case gitsync.NoChange:
		s.log.Debugw("Repository up to date", "syncId", syncID)
	case gitsync.FastForwarded:
		s.log.Infow("Repository synchronized",
			"syncId", syncID,
			"from", outcome.From.String(),
			"to", outcome.To.String(),
		)
		if outcome.Hook != nil && outcome.Hook.ExitCode != 0 {
			s.log.Warnw("Hook did not exit cleanly", "syncId", syncID, "exitCode", outcome.Hook.ExitCode)
		}
	case gitsync.Failed:
		s.log.Errorw("Sync cycle failed", "syncId", syncID, "error", outcome.Err)
	}
}

// unrecoverable returns the outcome's error when it should terminate
// this supervisor. Fetch, auth and hook failures are always transient;
// only a vanished checkout ends the loop.
func unrecoverable(outcome gitsync.Outcome) error {
	if outcome.Kind != gitsync.Failed {
		return nil
	}
	var stateErr *gitsync.RepositoryStateError
	if errors.As(outcome.Err, &stateErr) && stateErr.Missing {
		return outcome.Err
	}
	return nil
}
