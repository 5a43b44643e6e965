package config

import (
	"fmt"

	goGit "github.com/go-git/go-git/v5"
)

// ValidateWorkingCopies checks that every configured path is an existing
// git working copy with a usable "origin" remote. It runs once at load
// time, before any supervisor is spawned, so a bad entry aborts the
// process instead of failing mid-loop.
func ValidateWorkingCopies(config *Config) error {
	for _, spec := range config.Repos {
		if err := validateWorkingCopy(spec); err != nil {
			return err
		}
	}
	return nil
}

func validateWorkingCopy(spec RepositorySpec) error {
	repo, err := goGit.PlainOpen(spec.Path)
	if err != nil {
		return fmt.Errorf("repository %s: not an existing git working copy: %w", spec.Path, err)
	}

	remote, err := repo.Remote(goGit.DefaultRemoteName)
	if err != nil {
		return fmt.Errorf("repository %s: no remote named %q: %w", spec.Path, goGit.DefaultRemoteName, err)
	}

	if len(remote.Config().URLs) == 0 {
		return fmt.Errorf("repository %s: remote %q has no URL", spec.Path, goGit.DefaultRemoteName)
	}

	return nil
}
