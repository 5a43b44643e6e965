package watcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/margo/repowatch/config"
	"github.com/margo/repowatch/gitsync"
)

func TestCoordinator_IsolatesFailingRepository(t *testing.T) {
	specs := []config.RepositorySpec{
		testSpec("/repo/healthy", 1),
		testSpec("/repo/vanished", 1),
	}

	engine := newFakeEngine(func(spec config.RepositorySpec) gitsync.Outcome {
		if spec.Path == "/repo/vanished" {
			return missingCheckout(spec)
		}
		return gitsync.Outcome{Kind: gitsync.NoChange}
	})

	coordinator := NewCoordinator(specs, engine, zaptest.NewLogger(t).Sugar())

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()
	coordinator.Run(ctx)

	// The vanished repository terminated its own supervisor on the
	// first cycle without disturbing the healthy one's schedule.
	assert.Equal(t, 1, engine.count("/repo/vanished"))
	assert.GreaterOrEqual(t, engine.count("/repo/healthy"), 2)
}

func TestCoordinator_ReturnsOnceAllSupervisorsEnd(t *testing.T) {
	specs := []config.RepositorySpec{
		testSpec("/repo/a", 1),
		testSpec("/repo/b", 1),
	}
	engine := newFakeEngine(missingCheckout)
	coordinator := NewCoordinator(specs, engine, zaptest.NewLogger(t).Sugar())

	done := make(chan struct{})
	go func() {
		coordinator.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("coordinator did not return after all supervisors ended")
	}
	assert.Equal(t, 1, engine.count("/repo/a"))
	assert.Equal(t, 1, engine.count("/repo/b"))
}

func TestCoordinator_StopsAllOnCancellation(t *testing.T) {
	specs := []config.RepositorySpec{
		testSpec("/repo/a", 300),
		testSpec("/repo/b", 300),
	}
	engine := newFakeEngine(alwaysNoChange)
	coordinator := NewCoordinator(specs, engine, zaptest.NewLogger(t).Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		coordinator.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("coordinator did not stop after cancellation")
	}
	assert.Equal(t, 1, engine.count("/repo/a"))
	assert.Equal(t, 1, engine.count("/repo/b"))
}
