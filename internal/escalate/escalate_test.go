package escalate

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/containerd/errdefs"

	"github.com/fudanglp/docker-layers/internal/errors"
	"github.com/fudanglp/docker-layers/internal/probe"
	"github.com/fudanglp/docker-layers/internal/system"
)

// fakeRelauncher records relaunch attempts.
type fakeRelauncher struct {
	outcome Outcome
	err     error
	calls   int
}

func (f *fakeRelauncher) Tool() string { return "sudo" }

func (f *fakeRelauncher) Command() ([]string, error) {
	return []string{"sudo", "/usr/local/bin/peel", "inspect", "alpine:3.19"}, nil
}

func (f *fakeRelauncher) Relaunch(ctx context.Context) (Outcome, error) {
	f.calls++
	return f.outcome, f.err
}

// unreadableReader fails the test if the controller reads an answer.
type unreadableReader struct{ t *testing.T }

func (r unreadableReader) Read(p []byte) (int, error) {
	r.t.Error("controller read from stdin")
	return 0, stderrors.New("unexpected read")
}

type errReader struct{}

func (errReader) Read(p []byte) (int, error) { return 0, stderrors.New("stdin closed badly") }

func lockedRuntime() *probe.RuntimeInfo {
	return &probe.RuntimeInfo{
		Kind:          probe.KindDocker,
		BinaryPath:    "/usr/bin/docker",
		StorageRoot:   "/var/lib/docker",
		StorageDriver: probe.DriverOverlay2,
		CanRead:       false,
		IsRunning:     true,
	}
}

func newTestController(in string, r *fakeRelauncher) (*Controller, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Controller{
		In:         strings.NewReader(in),
		Out:        out,
		Relauncher: r,
		Owner:      func(string) (string, bool) { return "root", true },
		IsRoot:     func() bool { return false },
	}, out
}

func TestEvaluate(t *testing.T) {
	readable := lockedRuntime()
	readable.CanRead = true

	tests := []struct {
		name   string
		rt     *probe.RuntimeInfo
		useAPI bool
		want   State
	}{
		{"api path bypasses", lockedRuntime(), true, StateBypassed},
		{"api path bypasses readable", readable, true, StateBypassed},
		{"no runtime", nil, false, StateSatisfied},
		{"readable storage", readable, false, StateSatisfied},
		{"unreadable storage", lockedRuntime(), false, StateNeedsDecision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.rt, tt.useAPI); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccepts(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"", true},
		{"\n", true},
		{"y", true},
		{"Y", true},
		{"yes", true},
		{"  YES \n", true},
		{"n", false},
		{"no", false},
		{"yep", false},
		{"sure", false},
		{"y y", false},
	}

	for _, tt := range tests {
		if got := Accepts(tt.answer); got != tt.want {
			t.Errorf("Accepts(%q) = %v, want %v", tt.answer, got, tt.want)
		}
	}
}

func TestEnsure_BypassDoesNotPrompt(t *testing.T) {
	r := &fakeRelauncher{}
	out := &bytes.Buffer{}
	c := &Controller{In: unreadableReader{t}, Out: out, Relauncher: r}

	if err := c.Ensure(context.Background(), lockedRuntime(), true); err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("bypass wrote a prompt: %q", out.String())
	}
	if r.calls != 0 {
		t.Error("bypass must not relaunch")
	}
}

func TestEnsure_Satisfied(t *testing.T) {
	r := &fakeRelauncher{}
	c := &Controller{In: unreadableReader{t}, Out: &bytes.Buffer{}, Relauncher: r}
	readable := lockedRuntime()
	readable.CanRead = true

	for _, rt := range []*probe.RuntimeInfo{readable, nil} {
		if err := c.Ensure(context.Background(), rt, false); err != nil {
			t.Errorf("Ensure(%v) error: %v", rt, err)
		}
	}
	if r.calls != 0 {
		t.Error("readable storage must not relaunch")
	}
}

func TestEnsure_Declined(t *testing.T) {
	for _, answer := range []string{"n\n", "no\n", "nope\n"} {
		t.Run(strings.TrimSpace(answer), func(t *testing.T) {
			r := &fakeRelauncher{}
			c, out := newTestController(answer, r)

			err := c.Ensure(context.Background(), lockedRuntime(), false)
			if err == nil {
				t.Fatal("declining should fail")
			}
			if !errdefs.IsPermissionDenied(err) {
				t.Errorf("error = %v, want permission denied", err)
			}
			if code := errors.GetExitCode(err); code != errors.ExitAccessDenied {
				t.Errorf("exit code = %d, want %d", code, errors.ExitAccessDenied)
			}
			for _, want := range []string{"sudo", "--use-oci"} {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q should mention %s", err.Error(), want)
				}
			}
			if r.calls != 0 {
				t.Error("declining must not relaunch")
			}

			prompt := out.String()
			for _, want := range []string{"/var/lib/docker", "owned by root", "--use-oci", "Docker API", "[Y/n]", "/usr/local/bin/peel inspect alpine:3.19"} {
				if !strings.Contains(prompt, want) {
					t.Errorf("prompt missing %q:\n%s", want, prompt)
				}
			}
		})
	}
}

func TestEnsure_AcceptRelaunches(t *testing.T) {
	for _, answer := range []string{"\n", "y\n", " Yes \n", ""} {
		t.Run(strings.TrimSpace(answer), func(t *testing.T) {
			r := &fakeRelauncher{outcome: Outcome{ExitCode: 7}}
			c, _ := newTestController(answer, r)

			err := c.Ensure(context.Background(), lockedRuntime(), false)

			var exitReq *ExitRequest
			if !stderrors.As(err, &exitReq) {
				t.Fatalf("Ensure() error = %v, want *ExitRequest", err)
			}
			if r.calls != 1 {
				t.Errorf("relaunch calls = %d, want 1", r.calls)
			}
			if code := errors.GetExitCode(err); code != 7 {
				t.Errorf("exit code = %d, want 7", code)
			}
			if !errors.IsSilent(err) {
				t.Error("exit request should be silent")
			}
		})
	}
}

func TestEnsure_RelaunchFailure(t *testing.T) {
	r := &fakeRelauncher{err: errors.EscalationFailed("cannot run sudo", stderrors.New("not found"))}
	c, _ := newTestController("y\n", r)

	err := c.Ensure(context.Background(), lockedRuntime(), false)
	if code := errors.GetExitCode(err); code != errors.ExitEscalation {
		t.Errorf("exit code = %d, want %d", code, errors.ExitEscalation)
	}
}

func TestEnsure_CancelledContextDoesNotRelaunch(t *testing.T) {
	r := &fakeRelauncher{}
	c, _ := newTestController("y\n", r)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Ensure(ctx, lockedRuntime(), false)

	if r.calls != 0 {
		t.Error("an answer read after cancellation must not relaunch")
	}
	if code := errors.GetExitCode(err); code != errors.ExitEscalation {
		t.Errorf("exit code = %d, want %d (err: %v)", code, errors.ExitEscalation, err)
	}
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want it to wrap context.Canceled", err)
	}
}

func TestEnsure_PromptHasNoTrailingSpaces(t *testing.T) {
	c, out := newTestController("n\n", &fakeRelauncher{})

	_ = c.Ensure(context.Background(), lockedRuntime(), false)

	lines := strings.Split(out.String(), "\n")
	for i, line := range lines[:len(lines)-1] {
		if strings.TrimRight(line, " ") != line {
			t.Errorf("line %d has trailing spaces: %q", i, line)
		}
	}
	if last := lines[len(lines)-1]; !strings.HasSuffix(last, "[Y/n] ") {
		t.Errorf("last line = %q, want the question", last)
	}
}

func TestEnsure_ReadFailure(t *testing.T) {
	r := &fakeRelauncher{}
	c, _ := newTestController("", r)
	c.In = errReader{}

	err := c.Ensure(context.Background(), lockedRuntime(), false)
	if code := errors.GetExitCode(err); code != errors.ExitEscalation {
		t.Errorf("exit code = %d, want %d", code, errors.ExitEscalation)
	}
	if r.calls != 0 {
		t.Error("a failed read must not relaunch")
	}
}

func TestEnsure_AlreadyRoot(t *testing.T) {
	r := &fakeRelauncher{}
	c, out := newTestController("y\n", r)
	c.In = unreadableReader{t}
	c.IsRoot = func() bool { return true }

	err := c.Ensure(context.Background(), lockedRuntime(), false)
	if !errdefs.IsPermissionDenied(err) {
		t.Errorf("error = %v, want permission denied", err)
	}
	if out.Len() != 0 || r.calls != 0 {
		t.Error("running as root must not prompt or relaunch")
	}
}

func TestEnsure_UnknownOwner(t *testing.T) {
	c, out := newTestController("n\n", &fakeRelauncher{})
	c.Owner = func(string) (string, bool) { return "", false }

	_ = c.Ensure(context.Background(), lockedRuntime(), false)

	if !strings.Contains(out.String(), "not readable by the current user") {
		t.Errorf("prompt should fall back to a generic reason:\n%s", out.String())
	}
}

func TestToolRelauncher_Command(t *testing.T) {
	r := &ToolRelauncher{
		Program:    "doas",
		Exec:       system.NewMockExecutor(),
		Executable: func() (string, error) { return "/opt/peel/bin/peel", nil },
		Args:       []string{"--runtime", "podman", "inspect", "my image"},
	}

	argv, err := r.Command()
	if err != nil {
		t.Fatalf("Command() error: %v", err)
	}
	want := []string{"doas", "/opt/peel/bin/peel", "--runtime", "podman", "inspect", "my image"}
	if strings.Join(argv, "|") != strings.Join(want, "|") {
		t.Errorf("Command() = %q, want %q", argv, want)
	}
}

func TestToolRelauncher_Relaunch(t *testing.T) {
	exec := system.NewMockExecutor()
	r := &ToolRelauncher{
		Program:    "sudo",
		Exec:       exec,
		Executable: func() (string, error) { return "/usr/bin/peel", nil },
		Args:       []string{"inspect", "alpine"},
	}

	outcome, err := r.Relaunch(context.Background())
	if err != nil {
		t.Fatalf("Relaunch() error: %v", err)
	}
	if outcome.ExitCode != 0 || outcome.Signaled {
		t.Errorf("Relaunch() = %+v, want clean exit", outcome)
	}

	cmd, ok := exec.LastCommand()
	if !ok || !cmd.Interactive || cmd.Line() != "sudo /usr/bin/peel inspect alpine" {
		t.Errorf("ran %+v, want interactive sudo relaunch", cmd)
	}
}

func TestToolRelauncher_ExitStatus(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   Outcome
	}{
		{"success", "exit 0", Outcome{ExitCode: 0}},
		{"failure code passes through", "exit 3", Outcome{ExitCode: 3}},
		{"killed by signal", "kill -9 $$", Outcome{ExitCode: 1, Signaled: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// "/bin/sh -c <script>" stands in for "sudo <exe> <args>".
			r := &ToolRelauncher{
				Program:    "/bin/sh",
				Exec:       system.DefaultExecutor(),
				Executable: func() (string, error) { return "-c", nil },
				Args:       []string{tt.script},
			}

			got, err := r.Relaunch(context.Background())
			if err != nil {
				t.Fatalf("Relaunch() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Relaunch() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestToolRelauncher_ChildOutlivesCancellation(t *testing.T) {
	r := &ToolRelauncher{
		Program:    "/bin/sh",
		Exec:       system.DefaultExecutor(),
		Executable: func() (string, error) { return "-c", nil },
		Args:       []string{"sleep 0.2; exit 3"},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := r.Relaunch(ctx)
	if err != nil {
		t.Fatalf("Relaunch() error: %v", err)
	}
	if want := (Outcome{ExitCode: 3}); got != want {
		t.Errorf("Relaunch() = %+v, want the child's own status %+v", got, want)
	}
}

func TestToolRelauncher_Failures(t *testing.T) {
	t.Run("executable unresolvable", func(t *testing.T) {
		exec := system.NewMockExecutor()
		r := &ToolRelauncher{
			Program:    "sudo",
			Exec:       exec,
			Executable: func() (string, error) { return "", stderrors.New("no /proc") },
		}

		_, err := r.Relaunch(context.Background())
		if code := errors.GetExitCode(err); code != errors.ExitEscalation {
			t.Errorf("exit code = %d, want %d", code, errors.ExitEscalation)
		}
		if len(exec.Commands) != 0 {
			t.Error("nothing should run without an executable")
		}
	})

	t.Run("tool missing", func(t *testing.T) {
		r := &ToolRelauncher{
			Program:    "/nonexistent/sudo",
			Exec:       system.DefaultExecutor(),
			Executable: func() (string, error) { return "/usr/bin/peel", nil },
		}

		_, err := r.Relaunch(context.Background())
		if code := errors.GetExitCode(err); code != errors.ExitEscalation {
			t.Errorf("exit code = %d, want %d (err: %v)", code, errors.ExitEscalation, err)
		}
	})
}

func TestNewToolRelauncher_DefaultTool(t *testing.T) {
	if got := NewToolRelauncher("", system.NewMockExecutor()).Tool(); got != DefaultTool {
		t.Errorf("Tool() = %q, want %q", got, DefaultTool)
	}
}

func TestExitRequest(t *testing.T) {
	req := &ExitRequest{Outcome: Outcome{ExitCode: 1, Signaled: true}}
	if req.ExitCode() != 1 || !req.Silent() {
		t.Errorf("ExitRequest = %+v", req)
	}
	if !strings.Contains(req.Error(), "abnormally") {
		t.Errorf("Error() = %q", req.Error())
	}
}

func TestPathOwner(t *testing.T) {
	dir := t.TempDir()
	if owner, ok := PathOwner(dir); ok && owner == "" {
		t.Error("PathOwner returned ok with an empty owner")
	}
	if _, ok := PathOwner(dir + "/missing"); ok {
		t.Error("PathOwner should fail for a missing path")
	}
}
