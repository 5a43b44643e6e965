package main

import (
	"fmt"

	goGit "github.com/go-git/go-git/v5"
	"github.com/kr/pretty"
	"go.uber.org/zap"

	"github.com/margo/repowatch/config"
	"github.com/margo/repowatch/credentials"
)

// runCheck dumps the parsed configuration and probes each repository:
// the checkout must open, origin must exist and credentials for its URL
// must resolve. Nothing is fetched and nothing is written.
func runCheck(cfg *config.Config, resolver credentials.Resolver, log *zap.SugaredLogger) error {
	fmt.Printf("parsed configuration:\n%s\n", pretty.Sprint(cfg))

	var failed bool
	for _, spec := range cfg.Repos {
		if err := checkRepository(spec, resolver); err != nil {
			log.Errorw("Check failed", "path", spec.Path, "error", err)
			failed = true
			continue
		}
		log.Infow("Check passed", "path", spec.Path, "branch", spec.Branch)
	}

	if failed {
		return fmt.Errorf("one or more repositories failed the check")
	}
	return nil
}

func checkRepository(spec config.RepositorySpec, resolver credentials.Resolver) error {
	repo, err := goGit.PlainOpen(spec.Path)
	if err != nil {
		return fmt.Errorf("not a git working copy: %w", err)
	}

	remote, err := repo.Remote(goGit.DefaultRemoteName)
	if err != nil {
		return fmt.Errorf("no origin remote: %w", err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return fmt.Errorf("origin remote has no URL")
	}

	if _, err := resolver.Resolve(urls[0], ""); err != nil {
		return fmt.Errorf("credential resolution for %s: %w", urls[0], err)
	}
	return nil
}
