package tournament

import (
	"io"

	"github.com/arenalab/arena/internal/agent"
	"github.com/arenalab/arena/internal/engine"
)

// Runner plays the whole tournament. The parameter list and its order are
// frozen for compatibility with existing runner implementations — note the
// pre-analysis budget appears twice (initial and per-game positions) and
// analysisEnabled is always true; both quirks are part of the contract.
//
// Scheduling inside the runner (including any internal concurrency) is
// opaque to the orchestrator: the call blocks until the tournament is
// complete or fails.
type Runner interface {
	Run(
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
	) error
}
