// Package system provides abstractions for OS operations to enable testing.
package system

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// FileSystem abstracts the file system queries used while probing runtimes.
type FileSystem interface {
	// Stat returns file info for the named file.
	Stat(path string) (fs.FileInfo, error)

	// Exists returns true if the path exists.
	Exists(path string) bool

	// IsDir returns true if the path is a directory.
	IsDir(path string) bool

	// IsRegular returns true if the path is a regular file.
	IsRegular(path string) bool

	// CanList returns true if the path exists and the current user can
	// read its directory entries.
	CanList(path string) bool

	// ResolveIn joins name onto root, resolving symlinks as if root were
	// the file system root.
	ResolveIn(root, name string) (string, error)
}

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// Run runs a command with stdout and stderr discarded.
	Run(ctx context.Context, name string, args ...string) error

	// Output runs a command and returns its stdout. Stderr is discarded.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// ExecuteInteractive runs a command with stdin/stdout/stderr connected to the terminal.
	ExecuteInteractive(ctx context.Context, name string, args ...string) error
}

// Environment abstracts environment variable lookups.
type Environment interface {
	LookupEnv(key string) (string, bool)
}

// DefaultFS returns the FileSystem implementation using real OS operations.
func DefaultFS() FileSystem {
	return osFileSystem{}
}

// DefaultExecutor returns the CommandExecutor implementation using os/exec.
func DefaultExecutor() CommandExecutor {
	return &osExecutor{}
}

// DefaultEnv returns the Environment backed by the process environment.
func DefaultEnv() Environment {
	return osEnvironment{}
}

// osFileSystem implements FileSystem using real OS operations.
type osFileSystem struct{}

func (osFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (osFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (osFileSystem) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (osFileSystem) IsRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (osFileSystem) CanList(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	// A single batch is enough to prove the entries are readable; storage
	// roots can hold many thousands of layers.
	_, err = f.ReadDir(1)
	return err == nil || errors.Is(err, io.EOF)
}

func (osFileSystem) ResolveIn(root, name string) (string, error) {
	return securejoin.SecureJoin(root, name)
}

// osEnvironment implements Environment using the process environment.
type osEnvironment struct{}

func (osEnvironment) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnv is an Environment backed by a map, for tests and overrides.
type MapEnv map[string]string

// LookupEnv implements Environment.
func (m MapEnv) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// cleanJoin is the non-resolving join used by fakes.
func cleanJoin(root, name string) string {
	return filepath.Join(root, filepath.Clean("/"+name))
}
