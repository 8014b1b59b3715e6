// internal/tournament/roundrobin.go
//
// The reference runner: a sequential round robin over every ordered agent
// pair, per scenario, per iteration. Self pairs are included only when
// selfMatches is set, which is exactly the n² / n(n-1) split the pipeline
// uses to precompute the expected game count.

package tournament

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/arenalab/arena/internal/agent"
	"github.com/arenalab/arena/internal/diag"
	"github.com/arenalab/arena/internal/engine"
	"github.com/arenalab/arena/internal/match"
)

// RoundRobin drives a match engine through the full schedule. Diag, when
// set, receives per-game chatter; the pipeline points it at the game-log
// destination during the running phase.
type RoundRobin struct {
	Engine match.Engine
	Diag   *diag.Channel
}

func (r *RoundRobin) Run(
	agents []agent.Descriptor,
	scenarios []string,
	iterations int,
	maxGameLength int,
	timeBudgetMS int,
	iterationBudget int,
	preAnalysisBudgetMS int64,
	perGameAnalysisBudgetMS int64,
	fullObservability bool,
	selfMatches bool,
	timeoutCheck bool,
	runGC bool,
	analysisEnabled bool,
	ectx *engine.Context,
	tracesFolder string,
	resultsSink io.Writer,
	progressSink io.Writer,
	tournamentFolder string,
) error {
	if r.Engine == nil {
		return fmt.Errorf("tournament: round robin: engine is required")
	}
	if tracesFolder != "" {
		if err := os.MkdirAll(tracesFolder, 0o755); err != nil {
			return fmt.Errorf("tournament: create traces folder: %w", err)
		}
	}

	game := 0
	for iteration := 0; iteration < iterations; iteration++ {
		for _, scenario := range scenarios {
			for i, first := range agents {
				for j, second := range agents {
					if i == j && !selfMatches {
						continue
					}
					fmt.Fprintf(progressSink, "iteration %d, %s: %s vs %s\n",
						iteration, scenario, first.Name, second.Name)
					r.chatterf("starting game %d: %s vs %s on %s\n", game, first.Name, second.Name, scenario)

					budget := perGameAnalysisBudgetMS
					if !analysisEnabled {
						budget = 0
					}
					result, err := r.Engine.Play(first.Agent, second.Agent, match.Params{
						Scenario:            scenario,
						MaxGameLength:       maxGameLength,
						TimeBudgetMS:        timeBudgetMS,
						IterationBudget:     iterationBudget,
						PreAnalysisBudgetMS: budget,
						FullObservability:   fullObservability,
						TimeoutCheck:        timeoutCheck,
					})
					if err != nil {
						return fmt.Errorf("tournament: play %s vs %s on %s: %w", first.Name, second.Name, scenario, err)
					}

					_, err = fmt.Fprintf(resultsSink, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%v\n",
						iteration, scenario, first.Name, second.Name,
						result.Elapsed.Milliseconds(), result.Winner, result.Crashed, result.TimedOut)
					if err != nil {
						return fmt.Errorf("tournament: write result: %w", err)
					}

					if tracesFolder != "" {
						if err := r.writeTrace(tracesFolder, game, first.Name, second.Name, scenario, result); err != nil {
							return err
						}
					}
					if runGC {
						runtime.GC()
					}
					game++
				}
			}
		}
	}
	return nil
}

func (r *RoundRobin) writeTrace(folder string, game int, a, b, scenario string, result match.Result) error {
	path := filepath.Join(folder, fmt.Sprintf("game_%d.txt", game))
	body := fmt.Sprintf("%s vs %s on %s\nsteps: %d\nwinner: %d\nelapsed: %s\n",
		a, b, scenario, result.Steps, result.Winner, result.Elapsed)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("tournament: write trace: %w", err)
	}
	return nil
}

func (r *RoundRobin) chatterf(format string, args ...any) {
	if r.Diag == nil {
		return
	}
	fmt.Fprintf(r.Diag.Out(), format, args...)
}
