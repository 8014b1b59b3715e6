// internal/agent/builtin.go
//
// The built-in agent roster. Keys are namespace-qualified type names; the
// resolver probes the namespaces in a fixed precedence order, so the same
// short name can exist in several namespaces without ambiguity.

package agent

import (
	"hash/fnv"

	"github.com/arenalab/arena/internal/engine"
)

// builtinNamespaces is the probe order for short names. The empty entry is
// the root namespace.
var builtinNamespaces = []string{"abstraction.", "", "core.", "portfolio.", "mcts.", "ahtn.", "rai."}

// builtins maps fully-qualified names to loadable types. Entries carry the
// constructor arity the underlying implementation actually exposes.
var builtins = map[string]Loadable{
	"abstraction.WorkerRush": {
		Name:           "WorkerRush",
		NewWithContext: func(ectx *engine.Context) (Agent, error) { return newRush("WorkerRush", "Worker", ectx), nil },
	},
	"abstraction.LightRush": {
		Name:           "LightRush",
		NewWithContext: func(ectx *engine.Context) (Agent, error) { return newRush("LightRush", "Light", ectx), nil },
	},
	"abstraction.HeavyRush": {
		Name:           "HeavyRush",
		NewWithContext: func(ectx *engine.Context) (Agent, error) { return newRush("HeavyRush", "Heavy", ectx), nil },
	},
	"RandomBiasedAI": {
		Name: "RandomBiasedAI",
		New:  func() (Agent, error) { return &randomBiased{}, nil },
	},
	"core.PassiveAI": {
		Name: "PassiveAI",
		New:  func() (Agent, error) { return passive{}, nil },
	},
	"portfolio.PortfolioAI": {
		Name: "PortfolioAI",
		NewWithContext: func(ectx *engine.Context) (Agent, error) {
			return &portfolio{members: []scorer{
				newRush("WorkerRush", "Worker", ectx),
				newRush("LightRush", "Light", ectx),
				newRush("HeavyRush", "Heavy", ectx),
			}}, nil
		},
	},
	"mcts.NaiveMCTS": {
		Name:           "NaiveMCTS",
		NewWithContext: func(ectx *engine.Context) (Agent, error) { return &naiveMCTS{ectx: ectx}, nil },
	},
	"rai.ScriptedAI": {
		Name: "ScriptedAI",
		New:  func() (Agent, error) { return &scripted{}, nil },
	},
}

// scorer is the decision surface the reference match engine drives. Agents
// that do not implement it score zero every step.
type scorer interface {
	Act(scenario string, step int) float64
}

// rush commits everything to one unit type from the first step.
type rush struct {
	name string
	unit engine.UnitType
}

func newRush(name, unitName string, ectx *engine.Context) *rush {
	a := &rush{name: name}
	if ectx != nil {
		if unit, ok := ectx.UnitByName(unitName); ok {
			a.unit = unit
		}
	}
	if a.unit.Name == "" {
		a.unit = engine.UnitType{Name: unitName, Cost: 1, HP: 1, Attack: 1, Speed: 1}
	}
	return a
}

func (a *rush) Name() string { return a.name }
func (a *rush) Reset()       {}

// Act front-loads pressure: cheap fast units dominate early, then the
// tempo advantage decays as the opponent stabilises.
func (a *rush) Act(scenario string, step int) float64 {
	tempo := float64(a.unit.Speed) / float64(a.unit.Cost)
	decay := 1.0 / (1.0 + float64(step)/50.0)
	return float64(a.unit.Attack) * tempo * decay
}

type passive struct{}

func (passive) Name() string { return "PassiveAI" }
func (passive) Reset()       {}

func (passive) Act(scenario string, step int) float64 { return 0 }

// randomBiased derives a deterministic pseudo-random score per step so
// repeated tournaments are reproducible.
type randomBiased struct {
	games int
}

func (a *randomBiased) Name() string { return "RandomBiasedAI" }
func (a *randomBiased) Reset()       { a.games++ }

func (a *randomBiased) Act(scenario string, step int) float64 {
	h := fnv.New64a()
	h.Write([]byte(scenario))
	h.Write([]byte{byte(step), byte(step >> 8), byte(a.games)})
	return float64(h.Sum64()%1000) / 250.0
}

// portfolio plays the best of its member strategies at each step.
type portfolio struct {
	members []scorer
}

func (a *portfolio) Name() string { return "PortfolioAI" }
func (a *portfolio) Reset()       {}

func (a *portfolio) Act(scenario string, step int) float64 {
	best := 0.0
	for _, m := range a.members {
		if s := m.Act(scenario, step); s > best {
			best = s
		}
	}
	return best
}

// naiveMCTS fakes a sampled lookahead: strength grows as the (imaginary)
// tree deepens over the course of a game.
type naiveMCTS struct {
	ectx *engine.Context
}

func (a *naiveMCTS) Name() string { return "NaiveMCTS" }
func (a *naiveMCTS) Reset()       {}

func (a *naiveMCTS) Act(scenario string, step int) float64 {
	growth := float64(step) / (float64(step) + 100.0)
	return 1.0 + 3.0*growth
}

type scripted struct {
	step int
}

func (a *scripted) Name() string { return "ScriptedAI" }
func (a *scripted) Reset()       { a.step = 0 }

func (a *scripted) Act(scenario string, step int) float64 {
	// Opening book for the first 20 steps, flat pressure afterwards.
	if step < 20 {
		return 2.5
	}
	return 1.0
}
