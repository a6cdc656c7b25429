package system

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// MockFS implements FileSystem for testing.
type MockFS struct {
	mu       sync.RWMutex
	files    map[string]fs.FileMode
	dirs     map[string]bool
	unlisted map[string]bool

	// Error injection
	StatErr    error
	ResolveErr error
}

// NewMockFS creates a new MockFS with an empty filesystem.
func NewMockFS() *MockFS {
	return &MockFS{
		files:    make(map[string]fs.FileMode),
		dirs:     make(map[string]bool),
		unlisted: make(map[string]bool),
	}
}

// AddFile adds a file to the mock filesystem.
func (m *MockFS) AddFile(path string, mode fs.FileMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = mode
	// Ensure parent directories exist
	dir := filepath.Dir(path)
	for dir != "." && dir != "/" {
		m.dirs[dir] = true
		dir = filepath.Dir(dir)
	}
}

// AddDir adds a directory, and its parents, to the mock filesystem.
func (m *MockFS) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for dir := path; dir != "." && dir != "/"; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
	}
}

// DenyList marks an existing directory as not listable by the current user.
func (m *MockFS) DenyList(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unlisted[path] = true
}

func (m *MockFS) Stat(path string) (fs.FileInfo, error) {
	if m.StatErr != nil {
		return nil, m.StatErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if mode, ok := m.files[path]; ok {
		return &mockFileInfo{name: filepath.Base(path), mode: mode}, nil
	}
	if m.dirs[path] {
		return &mockFileInfo{name: filepath.Base(path), mode: fs.ModeDir | 0755, isDir: true}, nil
	}
	return nil, fs.ErrNotExist
}

func (m *MockFS) Exists(path string) bool {
	_, err := m.Stat(path)
	return err == nil
}

func (m *MockFS) IsDir(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[path]
}

func (m *MockFS) IsRegular(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mode, ok := m.files[path]
	return ok && mode.IsRegular()
}

func (m *MockFS) CanList(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[path] && !m.unlisted[path]
}

func (m *MockFS) ResolveIn(root, name string) (string, error) {
	if m.ResolveErr != nil {
		return "", m.ResolveErr
	}
	return cleanJoin(root, name), nil
}

// mockFileInfo implements fs.FileInfo for testing.
type mockFileInfo struct {
	name  string
	size  int64
	mode  fs.FileMode
	isDir bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return time.Now() }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() interface{}   { return nil }

// ErrMockNoResponse is returned for commands without a configured response,
// mimicking a binary that is not installed.
var ErrMockNoResponse = errors.New("mock: executable file not found")

// MockExecutor implements CommandExecutor for testing.
type MockExecutor struct {
	mu sync.Mutex

	// Commands records all executed commands for verification.
	Commands []MockCommand

	// Responses maps command lines to responses.
	// Key format: "command arg1 arg2..."; the longest matching prefix wins.
	Responses map[string]MockResponse

	// DefaultResponse is used when no matching response is found.
	DefaultResponse MockResponse

	// InteractiveErr is returned by ExecuteInteractive if set.
	InteractiveErr error
}

// MockCommand records an executed command.
type MockCommand struct {
	Name        string
	Args        []string
	Interactive bool
}

// Line returns the command and its arguments joined by spaces.
func (c MockCommand) Line() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// MockResponse defines the response for a command.
type MockResponse struct {
	Output []byte
	Err    error
}

// NewMockExecutor creates a new MockExecutor whose unknown commands fail.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		Commands:        make([]MockCommand, 0),
		Responses:       make(map[string]MockResponse),
		DefaultResponse: MockResponse{Err: ErrMockNoResponse},
	}
}

// AddResponse adds a response for a specific command line.
func (m *MockExecutor) AddResponse(pattern string, output []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[pattern] = MockResponse{Output: output, Err: err}
}

func (m *MockExecutor) respond(cmd MockCommand) MockResponse {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Commands = append(m.Commands, cmd)

	parts := append([]string{cmd.Name}, cmd.Args...)
	for n := len(parts); n > 0; n-- {
		if resp, ok := m.Responses[strings.Join(parts[:n], " ")]; ok {
			return resp
		}
	}
	return m.DefaultResponse
}

func (m *MockExecutor) Run(ctx context.Context, name string, args ...string) error {
	return m.respond(MockCommand{Name: name, Args: args}).Err
}

func (m *MockExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	resp := m.respond(MockCommand{Name: name, Args: args})
	if resp.Err != nil {
		return nil, resp.Err
	}
	return resp.Output, nil
}

func (m *MockExecutor) ExecuteInteractive(ctx context.Context, name string, args ...string) error {
	m.respond(MockCommand{Name: name, Args: args, Interactive: true})

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.InteractiveErr
}

// LastCommand returns the most recently executed command.
func (m *MockExecutor) LastCommand() (MockCommand, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Commands) == 0 {
		return MockCommand{}, false
	}
	return m.Commands[len(m.Commands)-1], true
}

// Ran reports whether a command line starting with prefix was executed.
func (m *MockExecutor) Ran(prefix string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Commands {
		if strings.HasPrefix(c.Line(), prefix) {
			return true
		}
	}
	return false
}

// Reset clears all recorded commands.
func (m *MockExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands = make([]MockCommand, 0)
}
