package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_CanList(t *testing.T) {
	fsys := DefaultFS()
	dir := t.TempDir()

	open := filepath.Join(dir, "open")
	if err := os.Mkdir(open, 0755); err != nil {
		t.Fatal(err)
	}
	if !fsys.CanList(open) {
		t.Error("world-readable dir should be listable")
	}

	empty := filepath.Join(dir, "empty")
	if err := os.Mkdir(empty, 0700); err != nil {
		t.Fatal(err)
	}
	if !fsys.CanList(empty) {
		t.Error("empty owned dir should be listable")
	}

	if fsys.CanList(filepath.Join(dir, "missing")) {
		t.Error("missing dir should not be listable")
	}
}

func TestOSFileSystem_CanList_NoPermission(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses directory permissions")
	}

	fsys := DefaultFS()
	locked := filepath.Join(t.TempDir(), "locked")
	if err := os.Mkdir(locked, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(locked, "layer"), nil, 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0700) })

	if !fsys.Exists(locked) {
		t.Fatal("locked dir should exist")
	}
	if fsys.CanList(locked) {
		t.Error("dir without read permission should not be listable")
	}
}

func TestOSFileSystem_IsRegular(t *testing.T) {
	fsys := DefaultFS()
	dir := t.TempDir()
	file := filepath.Join(dir, "docker")
	if err := os.WriteFile(file, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	if !fsys.IsRegular(file) {
		t.Error("file should be regular")
	}
	if fsys.IsRegular(dir) {
		t.Error("dir should not be regular")
	}
	if !fsys.IsDir(dir) {
		t.Error("dir should be a dir")
	}
}

func TestOSFileSystem_ResolveIn(t *testing.T) {
	fsys := DefaultFS()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "overlay2"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := fsys.ResolveIn(root, "overlay2")
	if err != nil {
		t.Fatalf("ResolveIn error: %v", err)
	}
	if got != filepath.Join(root, "overlay2") {
		t.Errorf("ResolveIn = %q", got)
	}

	// A symlink pointing outside the root stays scoped to it.
	if err := os.Symlink("/", filepath.Join(root, "escape")); err != nil {
		t.Fatal(err)
	}
	got, err = fsys.ResolveIn(root, "escape")
	if err != nil {
		t.Fatalf("ResolveIn error: %v", err)
	}
	if got != root {
		t.Errorf("ResolveIn(escape) = %q, want %q", got, root)
	}
}

func TestOSExecutor(t *testing.T) {
	exec := DefaultExecutor()
	ctx := context.Background()

	sh := "/bin/sh"
	if _, err := os.Stat(sh); err != nil {
		t.Skip("no /bin/sh")
	}

	if err := exec.Run(ctx, sh, "-c", "exit 0"); err != nil {
		t.Errorf("Run(exit 0) = %v", err)
	}
	if err := exec.Run(ctx, sh, "-c", "exit 1"); err == nil {
		t.Error("Run(exit 1) should fail")
	}

	out, err := exec.Output(ctx, sh, "-c", "echo out; echo err >&2")
	if err != nil {
		t.Fatalf("Output error: %v", err)
	}
	if string(out) != "out\n" {
		t.Errorf("Output = %q, want stdout only", out)
	}
}
