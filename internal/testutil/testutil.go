package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fudanglp/docker-layers/internal/config"
	"github.com/fudanglp/docker-layers/internal/probe"
	"github.com/fudanglp/docker-layers/internal/system"
)

// Host is a throwaway host layout under a temp dir: a bin directory that
// is the whole of PATH, storage roots, and a config home.
type Host struct {
	T      *testing.T
	Dir    string
	BinDir string
	Env    system.MapEnv
}

// NewHost creates the layout and points the process PATH at its bin
// directory, so stub executables are what the real executor runs.
// Tests using it cannot run in parallel.
func NewHost(t *testing.T) *Host {
	t.Helper()

	dir := t.TempDir()
	h := &Host{
		T:      t,
		Dir:    dir,
		BinDir: filepath.Join(dir, "bin"),
	}
	for _, d := range []string{h.BinDir, h.home(), h.configHome()} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", d, err)
		}
	}

	t.Setenv("PATH", h.BinDir)
	h.Env = system.MapEnv{
		"PATH":            h.BinDir,
		"HOME":            h.home(),
		"XDG_CONFIG_HOME": h.configHome(),
	}
	return h
}

func (h *Host) home() string       { return filepath.Join(h.Dir, "home") }
func (h *Host) configHome() string { return filepath.Join(h.Dir, "config") }

// Stub installs an executable shell script called name whose body is
// script, e.g. `echo overlay2` or `exit 1`.
func (h *Host) Stub(name, script string) string {
	h.T.Helper()

	path := filepath.Join(h.BinDir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755); err != nil {
		h.T.Fatalf("Failed to write stub %s: %v", name, err)
	}
	return path
}

// StorageRoot creates the storage root for kind with one subdirectory per
// driver name, and returns its path.
func (h *Host) StorageRoot(kind probe.RuntimeKind, drivers ...string) string {
	h.T.Helper()

	root := filepath.Join(h.Dir, "storage", string(kind))
	dirs := []string{root}
	for _, d := range drivers {
		dirs = append(dirs, filepath.Join(root, d))
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			h.T.Fatalf("Failed to create %s: %v", d, err)
		}
	}
	return root
}

// Paths returns probe paths rooted in the temp dir. Roots only exist once
// StorageRoot has created them.
func (h *Host) Paths() probe.Paths {
	storage := filepath.Join(h.Dir, "storage")
	return probe.Paths{
		DockerRoot:         filepath.Join(storage, string(probe.KindDocker)),
		DockerSocket:       filepath.Join(h.Dir, "docker.sock"),
		PodmanRoot:         filepath.Join(storage, string(probe.KindPodman)),
		PodmanRootlessRoot: ".local/share/containers/storage",
		ContainerdRoot:     filepath.Join(storage, string(probe.KindContainerd)),
	}
}

// ProbeHost returns a probe.Host backed by the real executor and
// filesystem, with this layout's environment.
func (h *Host) ProbeHost() *probe.Host {
	return &probe.Host{
		Exec: system.DefaultExecutor(),
		FS:   system.DefaultFS(),
		Env:  h.Env,
	}
}

// Prober returns a Linux prober over ProbeHost and Paths.
func (h *Host) Prober() *probe.Prober {
	return &probe.Prober{
		Host:     h.ProbeHost(),
		Paths:    h.Paths(),
		Platform: probe.Linux(),
	}
}

// InstallConfig copies a config fixture to the default config location.
func (h *Host) InstallConfig(fixture string) string {
	h.T.Helper()

	dir := filepath.Join(h.configHome(), config.AppName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		h.T.Fatalf("Failed to create %s: %v", dir, err)
	}
	path := WriteFixture(h.T, dir, fixture)
	dst := filepath.Join(dir, config.FileName)
	if err := os.Rename(path, dst); err != nil {
		h.T.Fatalf("Failed to install config: %v", err)
	}
	return dst
}
