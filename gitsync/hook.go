package gitsync

import (
	"errors"
	"os/exec"

	"github.com/margo/repowatch/config"
)

// runHook executes the configured on_change command through the host
// shell with the checkout path as working directory. The command string
// is passed to the shell verbatim; no arguments or environment are
// injected beyond the inherited process environment.
//
// The hook runs synchronously and is deliberately not bound to the
// cycle context: an in-flight hook is allowed to finish on shutdown.
// Its exit status never changes the sync outcome.
func (e *SyncEngine) runHook(spec config.RepositorySpec) *HookResult {
	e.log.Infow("Running on_change hook", "path", spec.Path, "command", spec.OnChange)

	cmd := exec.Command("sh", "-c", spec.OnChange)
	cmd.Dir = spec.Path

	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			e.log.Warnw("Hook exited non-zero",
				"path", spec.Path,
				"command", spec.OnChange,
				"exitCode", exitErr.ExitCode(),
				"output", string(output),
			)
			return &HookResult{ExitCode: exitErr.ExitCode()}
		}
		spawnErr := &HookSpawnError{Command: spec.OnChange, Err: err}
		e.log.Errorw("Failed to spawn hook", "path", spec.Path, "error", spawnErr)
		return &HookResult{ExitCode: -1, SpawnErr: spawnErr}
	}

	e.log.Debugw("Hook completed", "path", spec.Path, "output", string(output))
	return &HookResult{ExitCode: 0}
}
