// repowatchd keeps local git checkouts synchronized with their remote
// branches and runs a configured hook whenever new commits land.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/margo/repowatch/config"
	"github.com/margo/repowatch/credentials"
	"github.com/margo/repowatch/gitsync"
	"github.com/margo/repowatch/watcher"
)

func main() {
	configPath := flag.String("config", "watcher.toml", "path to the TOML config file")
	checkMode := flag.Bool("check", false, "validate config and credential resolution, then exit")
	setupCredentials := flag.Bool("setup-credentials", false, "interactively create the git-credentials store, then exit")
	flag.Parse()

	if *setupCredentials {
		if err := runSetupCredentials(); err != nil {
			fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.NewLoader(*configPath).LoadAndValidate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorw("Cannot determine home directory", "error", err)
		os.Exit(1)
	}
	resolver := credentials.NewLocalResolver(homeDir)

	if *checkMode {
		if err := runCheck(cfg, resolver, log); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := config.ValidateWorkingCopies(cfg); err != nil {
		log.Errorw("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	engine := gitsync.NewSyncEngine(resolver, log)
	coordinator := watcher.NewCoordinator(cfg.Repos, engine, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coordinator.Run(ctx)
	log.Info("Shut down cleanly")
}

func newLogger(level string) (*zap.SugaredLogger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", level, err)
	}

	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.Level = atomicLevel
	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
