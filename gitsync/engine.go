// Package gitsync implements the synchronization cycle that keeps a
// local checkout matching a remote branch: fetch, compare, forced
// fast-forward, optional hook.
package gitsync

import (
	"context"
	"fmt"
	"os"

	goGit "github.com/go-git/go-git/v5"
	goGitConfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"

	"github.com/margo/repowatch/config"
	"github.com/margo/repowatch/credentials"
)

// Engine runs one sync cycle for a repository. The caller decides when
// a cycle starts; all git state transitions happen inside Sync.
type Engine interface {
	Sync(ctx context.Context, spec config.RepositorySpec) Outcome
}

// SyncEngine is the production Engine, backed by go-git and a
// credential resolver.
type SyncEngine struct {
	creds credentials.Resolver
	log   *zap.SugaredLogger
}

// NewSyncEngine creates a SyncEngine.
func NewSyncEngine(creds credentials.Resolver, log *zap.SugaredLogger) *SyncEngine {
	return &SyncEngine{
		creds: creds,
		log:   log,
	}
}

// Sync performs exactly one fetch-compare-fastforward-hook cycle.
//
// The fetched remote head is compared against the local HEAD commit.
// When they differ the local branch pointer and working tree are
// forcibly advanced to the fetched commit, discarding any local
// modifications and without checking ancestry. Checkouts watched by
// this daemon are assumed not to be edited by hand between cycles.
//
// All failures are converted into a Failed outcome; Sync never touches
// the working tree on a failed fetch.
func (e *SyncEngine) Sync(ctx context.Context, spec config.RepositorySpec) Outcome {
	e.log.Debugw("Checking repository for updates", "path", spec.Path, "branch", spec.Branch)

	repo, err := goGit.PlainOpen(spec.Path)
	if err != nil {
		missing := false
		if _, statErr := os.Stat(spec.Path); os.IsNotExist(statErr) {
			missing = true
		}
		return failure(&RepositoryStateError{Path: spec.Path, Missing: missing, Err: err})
	}

	remote, err := repo.Remote(goGit.DefaultRemoteName)
	if err != nil {
		return failure(&RepositoryStateError{Path: spec.Path, Err: fmt.Errorf("no origin remote: %w", err)})
	}
	remoteURLs := remote.Config().URLs
	if len(remoteURLs) == 0 {
		return failure(&RepositoryStateError{Path: spec.Path, Err: fmt.Errorf("origin remote has no URL")})
	}
	remoteURL := remoteURLs[0]

	head, err := repo.Head()
	if err != nil {
		return failure(&RepositoryStateError{Path: spec.Path, Err: fmt.Errorf("cannot resolve HEAD: %w", err)})
	}

	auth, err := e.creds.Resolve(remoteURL, "")
	if err != nil {
		return failure(err)
	}

	refSpec := goGitConfig.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/origin/%s", spec.Branch, spec.Branch))
	err = repo.FetchContext(ctx, &goGit.FetchOptions{
		RemoteName: goGit.DefaultRemoteName,
		RefSpecs:   []goGitConfig.RefSpec{refSpec},
		Auth:       auth,
		Tags:       goGit.NoTags,
		Force:      true,
	})
	if err != nil && err != goGit.NoErrAlreadyUpToDate {
		return failure(&FetchError{URL: remoteURL, Err: err})
	}

	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName(goGit.DefaultRemoteName, spec.Branch), true)
	if err != nil {
		return failure(&FetchError{URL: remoteURL, Err: fmt.Errorf("no remote ref for branch %s: %w", spec.Branch, err)})
	}
	fetchedHead := remoteRef.Hash()

	if fetchedHead == head.Hash() {
		e.log.Debugw("No changes detected", "path", spec.Path)
		return Outcome{Kind: NoChange}
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return failure(&RepositoryStateError{Path: spec.Path, Err: fmt.Errorf("cannot open worktree: %w", err)})
	}

	err = worktree.Reset(&goGit.ResetOptions{
		Commit: fetchedHead,
		Mode:   goGit.HardReset,
	})
	if err != nil {
		return failure(&RepositoryStateError{Path: spec.Path, Err: fmt.Errorf("hard reset to %s failed: %w", fetchedHead, err)})
	}

	e.log.Infow("Fast-forwarded repository",
		"path", spec.Path,
		"from", head.Hash().String(),
		"to", fetchedHead.String(),
	)

	outcome := Outcome{Kind: FastForwarded, From: head.Hash(), To: fetchedHead}
	if spec.OnChange != "" {
		outcome.Hook = e.runHook(spec)
	}
	return outcome
}

func failure(err error) Outcome {
	return Outcome{Kind: Failed, Err: err}
}
