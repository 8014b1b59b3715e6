// internal/agent/agent.go
//
// Agents are the pluggable competitors a tournament evaluates. The core
// treats them as opaque: it constructs them by name and hands them to the
// runner. Anything beyond Name/Reset is negotiated between the agent and
// the match engine through optional interfaces.

package agent

import (
	"fmt"

	"github.com/arenalab/arena/internal/engine"
)

// Agent is a constructed competitor.
type Agent interface {
	// Name identifies the agent implementation (not the configured lookup
	// name, which may carry a parameter suffix).
	Name() string
	// Reset clears per-game state before a new match.
	Reset()
}

// Descriptor binds a resolved agent to the name it was requested under.
// The configured name is kept verbatim, parameter suffix included.
type Descriptor struct {
	Name  string
	Agent Agent
}

// Loadable describes a constructible agent type. At least one of the two
// constructors must be set; resolution prefers the context-taking one.
type Loadable struct {
	Name           string
	NewWithContext func(*engine.Context) (Agent, error)
	New            func() (Agent, error)
}

// Construct builds an agent from a loadable type: the context-arg
// constructor when present, the parameterless one otherwise.
func (l Loadable) Construct(ectx *engine.Context) (Agent, error) {
	if l.NewWithContext != nil {
		return l.NewWithContext(ectx)
	}
	if l.New != nil {
		return l.New()
	}
	return nil, fmt.Errorf("agent: %s has no usable constructor", l.Name)
}
