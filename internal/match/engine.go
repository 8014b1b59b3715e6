// internal/match/engine.go
//
// The match engine plays one game between two agents on one scenario and
// reports the outcome. Real engines live outside this module; Scripted is
// the reference implementation used by the default runner and the tests.

package match

import (
	"hash/fnv"
	"time"

	"github.com/arenalab/arena/internal/agent"
)

// Params carries the per-game settings the orchestrator forwards opaquely.
type Params struct {
	Scenario            string
	MaxGameLength       int
	TimeBudgetMS        int
	IterationBudget     int
	PreAnalysisBudgetMS int64
	FullObservability   bool
	TimeoutCheck        bool
}

// Result is the outcome of one game. Winner is 0 or 1, or -1 for a draw.
// Crashed is the index of the crashed agent, -1 when none.
type Result struct {
	Winner   int
	Crashed  int
	TimedOut bool
	Elapsed  time.Duration
	Steps    int
}

// Engine plays a single game.
type Engine interface {
	Play(a, b agent.Agent, p Params) (Result, error)
}

// scorer is the optional decision surface agents expose to the scripted
// engine. Agents without it apply zero pressure.
type scorer interface {
	Act(scenario string, step int) float64
}

// Scripted is a deterministic engine: each step both agents emit a
// pressure score and the higher accumulated total wins. It exists so the
// orchestrator can be exercised end to end without an external engine.
type Scripted struct{}

func (Scripted) Play(a, b agent.Agent, p Params) (Result, error) {
	start := time.Now()
	a.Reset()
	b.Reset()

	var scoreA, scoreB float64
	steps := p.MaxGameLength
	for step := 0; step < steps; step++ {
		scoreA += act(a, p.Scenario, step)
		scoreB += act(b, p.Scenario, step)
		// A decisive lead ends the game early, like a destroyed base.
		if diff := scoreA - scoreB; diff > 500 || diff < -500 {
			steps = step + 1
			break
		}
	}

	r := Result{Crashed: -1, Elapsed: time.Since(start), Steps: steps}
	switch {
	case scoreA > scoreB:
		r.Winner = 0
	case scoreB > scoreA:
		r.Winner = 1
	default:
		r.Winner = -1
	}
	// Tie-break truly level games deterministically so reruns agree.
	if r.Winner == -1 && scoreA != 0 {
		h := fnv.New32a()
		h.Write([]byte(p.Scenario + a.Name() + b.Name()))
		r.Winner = int(h.Sum32() % 2)
	}
	return r, nil
}

func act(a agent.Agent, scenario string, step int) float64 {
	if s, ok := a.(scorer); ok {
		return s.Act(scenario, step)
	}
	return 0
}
