package escalate

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/kballard/go-shellquote"

	"github.com/fudanglp/docker-layers/internal/errors"
	"github.com/fudanglp/docker-layers/internal/logging"
	"github.com/fudanglp/docker-layers/internal/system"
)

// DefaultTool is the elevation program used when none is configured.
const DefaultTool = "sudo"

// Outcome is how an elevated child finished.
type Outcome struct {
	ExitCode int

	// Signaled is set when the child was killed rather than exiting;
	// ExitCode is then 1.
	Signaled bool
}

// Relauncher re-executes the current invocation with elevated privileges.
type Relauncher interface {
	// Tool names the elevation program, e.g. "sudo".
	Tool() string

	// Command returns the full argument vector Relaunch will run.
	Command() ([]string, error)

	// Relaunch runs the elevated child attached to the terminal and waits
	// for it. An error means the child could not be started.
	Relaunch(ctx context.Context) (Outcome, error)
}

// ToolRelauncher runs `<tool> <executable> <args...>`.
type ToolRelauncher struct {
	Program    string
	Exec       system.CommandExecutor
	Executable func() (string, error)
	Args       []string
}

// NewToolRelauncher returns a relauncher that repeats this process's
// command line under program, or under sudo when program is empty.
func NewToolRelauncher(program string, exec system.CommandExecutor) *ToolRelauncher {
	if program == "" {
		program = DefaultTool
	}
	return &ToolRelauncher{
		Program:    program,
		Exec:       exec,
		Executable: os.Executable,
		Args:       os.Args[1:],
	}
}

func (r *ToolRelauncher) Tool() string {
	return r.Program
}

func (r *ToolRelauncher) Command() ([]string, error) {
	exe, err := r.Executable()
	if err != nil {
		return nil, errors.EscalationFailed("cannot locate the running executable", err)
	}
	argv := make([]string, 0, len(r.Args)+2)
	argv = append(argv, r.Program, exe)
	return append(argv, r.Args...), nil
}

func (r *ToolRelauncher) Relaunch(ctx context.Context) (Outcome, error) {
	argv, err := r.Command()
	if err != nil {
		return Outcome{}, err
	}

	logging.Debug("relaunching with elevated privileges", "command", shellquote.Join(argv...))

	// The child owns the terminal and its own signal handling; cancelling
	// ctx must not kill it and replace its exit status.
	err = r.Exec.ExecuteInteractive(context.WithoutCancel(ctx), argv[0], argv[1:]...)
	if err == nil {
		return Outcome{}, nil
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return Outcome{ExitCode: code}, nil
		}
		logging.Debug("elevated child terminated abnormally", "state", exitErr.String())
		return Outcome{ExitCode: errors.ExitGeneralError, Signaled: true}, nil
	}
	return Outcome{}, errors.EscalationFailed(fmt.Sprintf("cannot run %s", r.Program), err)
}

// ExitRequest is returned once an elevated child has run. The caller must
// stop and exit with the child's status; the child already reported its
// own errors.
type ExitRequest struct {
	Outcome Outcome
}

func (e *ExitRequest) Error() string {
	if e.Outcome.Signaled {
		return "elevated process terminated abnormally"
	}
	return fmt.Sprintf("elevated process exited with status %d", e.Outcome.ExitCode)
}

// ExitCode returns the status to exit with.
func (e *ExitRequest) ExitCode() int {
	return e.Outcome.ExitCode
}

// Silent reports that nothing should be printed before exiting.
func (e *ExitRequest) Silent() bool {
	return true
}
