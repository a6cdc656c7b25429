package probe

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fudanglp/docker-layers/internal/logging"
	"github.com/fudanglp/docker-layers/internal/system"
)

// Host bundles the OS seams the detectors query.
type Host struct {
	Exec system.CommandExecutor
	FS   system.FileSystem
	Env  system.Environment
}

// NewHost returns a Host backed by the real operating system.
func NewHost() *Host {
	return &Host{
		Exec: system.DefaultExecutor(),
		FS:   system.DefaultFS(),
		Env:  system.DefaultEnv(),
	}
}

// FindBinary searches PATH for a regular file called name, like `which`.
// An unset PATH finds nothing.
func (h *Host) FindBinary(name string) (string, bool) {
	pathVar, ok := h.Env.LookupEnv("PATH")
	if !ok || pathVar == "" {
		return "", false
	}
	for _, dir := range strings.Split(pathVar, ":") {
		candidate := filepath.Join(dir, name)
		if h.FS.IsRegular(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// CheckDaemon runs a command with its output discarded and reports whether
// it started and exited successfully.
func (h *Host) CheckDaemon(ctx context.Context, cmd string, args ...string) bool {
	err := h.Exec.Run(ctx, cmd, args...)
	if err != nil {
		logging.Debug("daemon check failed", "cmd", cmd, "args", args, "error", err)
	}
	return err == nil
}

// CommandOutput runs a command and returns its trimmed stdout when it
// exits successfully.
func (h *Host) CommandOutput(ctx context.Context, cmd string, args ...string) (string, bool) {
	out, err := h.Exec.Output(ctx, cmd, args...)
	if err != nil {
		logging.Debug("command failed", "cmd", cmd, "args", args, "error", err)
		return "", false
	}
	return strings.TrimSpace(string(out)), true
}

// CheckReadAccess reports whether path exists and the current user can
// list it. Root-owned storage typically exists but is not listable.
func (h *Host) CheckReadAccess(path string) bool {
	return h.FS.Exists(path) && h.FS.CanList(path)
}
