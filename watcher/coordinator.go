package watcher

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/margo/repowatch/config"
	"github.com/margo/repowatch/gitsync"
)

// Coordinator starts one Supervisor per configured repository and runs
// them concurrently for the lifetime of the process. Supervisors are
// peers: one terminating, for whatever reason, never affects another.
type Coordinator struct {
	supervisors []*Supervisor
	log         *zap.SugaredLogger
}

// NewCoordinator creates a Coordinator for the given specs. The specs
// are expected to be validated already; a malformed spec is a
// configuration error caught before this point.
func NewCoordinator(specs []config.RepositorySpec, engine gitsync.Engine, log *zap.SugaredLogger) *Coordinator {
	supervisors := make([]*Supervisor, 0, len(specs))
	for _, spec := range specs {
		supervisors = append(supervisors, NewSupervisor(spec, engine, log))
	}
	return &Coordinator{
		supervisors: supervisors,
		log:         log,
	}
}

// Run blocks until every supervisor has ended. Cancelling ctx requests
// shutdown: each supervisor finishes its in-flight cycle and stops
// before its next one.
func (c *Coordinator) Run(ctx context.Context) {
	c.log.Infow("Starting repository watchers", "count", len(c.supervisors))

	var wg sync.WaitGroup
	for _, supervisor := range c.supervisors {
		wg.Add(1)
		go func(s *Supervisor) {
			defer wg.Done()
			if err := s.Run(ctx); err != nil {
				c.log.Errorw("Supervisor terminated", "path", s.spec.Path, "error", err)
			}
		}(supervisor)
	}

	wg.Wait()
	c.log.Info("All repository watchers stopped")
}
