package escalate

import (
	"strings"

	"github.com/fudanglp/docker-layers/internal/probe"
)

// State is a step of the escalation decision for one invocation.
type State int

const (
	StateEvaluate State = iota
	StateSatisfied
	StateNeedsDecision
	StateEscalating
	StateDeclined
	StateBypassed
)

func (s State) String() string {
	switch s {
	case StateEvaluate:
		return "evaluate"
	case StateSatisfied:
		return "satisfied"
	case StateNeedsDecision:
		return "needs-decision"
	case StateEscalating:
		return "escalating"
	case StateDeclined:
		return "declined"
	case StateBypassed:
		return "bypassed"
	default:
		return "unknown"
	}
}

// Evaluate decides whether direct access to rt's storage needs the user's
// attention. A nil runtime means there is nothing to read.
func Evaluate(rt *probe.RuntimeInfo, useAPI bool) State {
	switch {
	case useAPI:
		return StateBypassed
	case rt == nil, rt.CanRead:
		return StateSatisfied
	default:
		return StateNeedsDecision
	}
}

// Accepts reports whether a prompt answer agrees to elevate.
// The prompt defaults to yes, so an empty answer accepts.
func Accepts(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "y", "yes":
		return true
	default:
		return false
	}
}
