package escalate

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kballard/go-shellquote"

	"github.com/fudanglp/docker-layers/internal/errors"
	"github.com/fudanglp/docker-layers/internal/logging"
	"github.com/fudanglp/docker-layers/internal/probe"
)

// APIFlag is the command-line flag that selects the non-privileged path.
const APIFlag = "--use-oci"

var (
	markStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	boldStyle = lipgloss.NewStyle().Bold(true)
	flagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("76")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// Controller asks the user how to proceed when direct storage access is
// denied, and relaunches elevated when they agree.
type Controller struct {
	// In supplies the answer; Out receives the notice and prompt.
	In  io.Reader
	Out io.Writer

	Relauncher Relauncher

	// Owner resolves who owns a storage root. Optional.
	Owner func(path string) (string, bool)

	// IsRoot reports whether elevation is already in effect. Optional.
	IsRoot func() bool
}

// NewController returns a Controller that prompts on the terminal.
func NewController(r Relauncher) *Controller {
	return &Controller{
		In:         os.Stdin,
		Out:        os.Stderr,
		Relauncher: r,
		Owner:      PathOwner,
		IsRoot:     IsRoot,
	}
}

// Ensure makes direct access to rt's storage possible or fails. It returns
// nil when the caller may proceed, an *ExitRequest after an elevated child
// has run, and a permission error when the user declines.
func (c *Controller) Ensure(ctx context.Context, rt *probe.RuntimeInfo, useAPI bool) error {
	state := Evaluate(rt, useAPI)
	logging.Debug("escalation evaluated", "state", state, "use_api", useAPI)
	if state != StateNeedsDecision {
		return nil
	}

	if c.IsRoot != nil && c.IsRoot() {
		logging.Debug("storage unreadable as root, not prompting", "storage_root", rt.StorageRoot)
		return errors.StorageUnreadable(rt.StorageRoot)
	}

	if err := c.prompt(rt); err != nil {
		return errors.EscalationFailed("cannot write escalation prompt", err)
	}
	answer, err := readAnswer(c.In)
	if err != nil {
		return errors.EscalationFailed("cannot read escalation answer", err)
	}
	// An answer that arrives after cancellation is not a decision.
	if err := ctx.Err(); err != nil {
		return errors.EscalationFailed("escalation interrupted", err)
	}

	if !Accepts(answer) {
		logging.Debug("escalation state", "state", StateDeclined)
		return errors.AccessDeclined(rt.StorageRoot)
	}

	logging.Debug("escalation state", "state", StateEscalating, "tool", c.Relauncher.Tool())
	outcome, err := c.Relauncher.Relaunch(ctx)
	if err != nil {
		return err
	}
	return &ExitRequest{Outcome: outcome}
}

func (c *Controller) prompt(rt *probe.RuntimeInfo) error {
	tool := c.Relauncher.Tool()

	owner := "is not readable by the current user"
	if c.Owner != nil {
		if name, ok := c.Owner(rt.StorageRoot); ok {
			owner = "which is owned by " + name
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Direct layer access reads from %s %s.\n",
		markStyle.Render("!"), boldStyle.Render(rt.StorageRoot), owner)

	lines := []string{
		fmt.Sprintf("peel needs to re-run with %s to read layers directly.", boldStyle.Render(tool)),
	}
	if argv, err := c.Relauncher.Command(); err == nil {
		lines = append(lines, dimStyle.Render(shellquote.Join(argv...)))
	}
	lines = append(lines,
		"",
		fmt.Sprintf("Alternatively, run with %s to read layers through the %s API", flagStyle.Render(APIFlag), rt.Kind),
		"(no root needed, but slower).",
	)
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		if line != "" {
			b.WriteString("  " + line)
		}
	}
	fmt.Fprintf(&b, "\n\nRe-run with %s? %s ", tool, dimStyle.Render("[Y/n]"))

	_, err := io.WriteString(c.Out, b.String())
	return err
}

// readAnswer reads one line. End of input counts as an empty answer.
func readAnswer(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !stderrors.Is(err, io.EOF) {
		return "", err
	}
	return line, nil
}
