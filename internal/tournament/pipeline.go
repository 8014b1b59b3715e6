// internal/tournament/pipeline.go
//
// The orchestration pipeline. Phases run strictly in sequence:
//
//	Validating → LoadingBundles → ResolvingAgents → Preparing → Running → Finalizing → Done
//
// with Failed absorbing any error. Each noisy phase redirects the
// diagnostic channel to its own log file and restores it before the error
// (if any) propagates, so operator-facing progress output stays clean.

package tournament

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/arenalab/arena/internal/agent"
	"github.com/arenalab/arena/internal/bundle"
	"github.com/arenalab/arena/internal/config"
	"github.com/arenalab/arena/internal/diag"
	"github.com/arenalab/arena/internal/engine"
	"github.com/arenalab/arena/internal/logging"
	"github.com/arenalab/arena/internal/results"
)

// State identifies the pipeline phase.
type State int

const (
	StateValidating State = iota
	StateLoadingBundles
	StateResolvingAgents
	StatePreparing
	StateRunning
	StateFinalizing
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateValidating:      "validating",
	StateLoadingBundles:  "loading-bundles",
	StateResolvingAgents: "resolving-agents",
	StatePreparing:       "preparing",
	StateRunning:         "running",
	StateFinalizing:      "finalizing",
	StateDone:            "done",
	StateFailed:          "failed",
}

func (s State) String() string { return stateNames[s] }

// logSizeWarnBytes is the advisory threshold for persisted game logs.
const logSizeWarnBytes = 100 * 1024 * 1024

// Pipeline orchestrates one tournament run. Construct it, set the
// collaborators, call Run once.
type Pipeline struct {
	Config config.Tournament
	// Diag is the process-wide diagnostic sink pair; its identity at Run
	// time is treated as the operator console.
	Diag   *diag.Channel
	Runner Runner
	// Loader yields agent types from the bot source folder. Defaults to
	// the yaegi bundle loader.
	Loader bundle.Loader
	// Reporter overrides where progress reports go. Defaults to the
	// console captured at Run time.
	Reporter results.Reporter
	// RunID tags artifacts and database rows. Defaults to a fresh UUID.
	RunID string

	registry *agent.Registry
	state    State
}

// State reports the current pipeline phase.
func (p *Pipeline) State() State { return p.state }

// Registry exposes the bundle-loaded agent types after LoadingBundles.
func (p *Pipeline) Registry() *agent.Registry { return p.registry }

// Run executes the full pipeline. Any error leaves the pipeline in the
// Failed state with the diagnostic channel restored.
func (p *Pipeline) Run(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			p.state = StateFailed
		}
	}()
	if p.Diag == nil || p.Runner == nil {
		return fmt.Errorf("tournament: pipeline needs a diagnostic channel and a runner")
	}
	if p.Loader == nil {
		p.Loader = bundle.LoadAgentTypes
	}
	if p.RunID == "" {
		p.RunID = uuid.NewString()
	}
	console := p.Diag.Out()
	if p.Reporter == nil {
		p.Reporter = results.ConsoleReporter{W: console}
	}

	p.state = StateValidating
	if err := p.Config.Validate(); err != nil {
		return err
	}

	ectx := engine.NewContext()
	ectx.FullObservability = p.Config.FullObservability
	p.registry = agent.NewRegistry()

	if p.Config.BotSourceFolder != "" {
		p.state = StateLoadingBundles
		if err := p.loadBundles(console); err != nil {
			return err
		}
	}

	p.state = StateResolvingAgents
	roster, err := p.resolveAgents(console, ectx)
	if err != nil {
		return err
	}

	p.state = StatePreparing
	run, err := p.prepare(ctx, console)
	if err != nil {
		return err
	}

	p.state = StateRunning
	tracesFolder := ""
	if p.Config.SaveTraces {
		tracesFolder = p.Config.ArtifactPath(config.TracesSubfolder)
	}
	runErr := p.Runner.Run(
		roster,
		p.Config.Scenarios,
		p.Config.Iterations,
		p.Config.MaxGameLength,
		p.Config.TimeBudgetMS,
		p.Config.IterationBudget,
		p.Config.PreAnalysisBudgetMS,
		p.Config.PreAnalysisBudgetMS,
		p.Config.FullObservability,
		p.Config.SelfMatches,
		p.Config.TimeoutCheck,
		p.Config.RunGC,
		true,
		ectx,
		tracesFolder,
		run.tracking,
		run.progress.Writer(),
		p.Config.TournamentFolder,
	)

	p.state = StateFinalizing
	if closeErr := run.close(); closeErr != nil && runErr == nil {
		runErr = closeErr
	}
	if runErr != nil {
		return &RunnerError{Err: runErr}
	}

	p.summarize(console)
	p.state = StateDone
	return nil
}

// loadBundles populates the registry from the bot source folder under a
// redirected scope writing to jar_loading.log.
func (p *Pipeline) loadBundles(console io.Writer) error {
	folder := p.Config.BotSourceFolder
	fmt.Fprintf(console, "Loading bots from: %s\n", folder)

	// Reject a bad folder before any artifact is created.
	info, err := os.Stat(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return &bundle.LoadError{Folder: folder, Err: errors.New("folder not found")}
		}
		return &bundle.LoadError{Folder: folder, Err: err}
	}
	if !info.IsDir() {
		return &bundle.LoadError{Folder: folder, Err: errors.New("not a directory")}
	}

	if err := p.ensureTournamentFolder(); err != nil {
		return err
	}
	logFile, err := os.Create(p.Config.ArtifactPath(config.BundleLoadLog))
	if err != nil {
		return &IOError{Op: "create", Path: p.Config.ArtifactPath(config.BundleLoadLog), Err: err}
	}
	scope := p.Diag.Redirect(logFile)
	loadables, err := p.Loader(folder)
	releaseErr := scope.Release()
	if err != nil {
		var le *bundle.LoadError
		if errors.As(err, &le) {
			return err
		}
		return &bundle.LoadError{Folder: folder, Err: err}
	}
	if releaseErr != nil {
		return &IOError{Op: "close", Path: p.Config.ArtifactPath(config.BundleLoadLog), Err: releaseErr}
	}
	for _, loadable := range loadables {
		if err := p.registry.Register(loadable); err != nil {
			return &bundle.LoadError{Folder: folder, Err: err}
		}
	}
	fmt.Fprintf(console, "Loaded %d bot(s) from bundles\n", len(loadables))
	return nil
}

// resolveAgents builds the roster in configured order under a redirected
// scope writing to ai_loading.log. The first failure aborts the phase.
func (p *Pipeline) resolveAgents(console io.Writer, ectx *engine.Context) ([]agent.Descriptor, error) {
	fmt.Fprintf(console, "\nMaps: %d\n", len(p.Config.Scenarios))
	for _, scenario := range p.Config.Scenarios {
		fmt.Fprintf(console, "  - %s\n", scenario)
	}
	fmt.Fprintf(console, "\nLoading AIs: %d\n", len(p.Config.AgentNames))

	if err := p.ensureTournamentFolder(); err != nil {
		return nil, err
	}
	logFile, err := os.Create(p.Config.ArtifactPath(config.AgentLoadLog))
	if err != nil {
		return nil, &IOError{Op: "create", Path: p.Config.ArtifactPath(config.AgentLoadLog), Err: err}
	}
	scope := p.Diag.Redirect(logFile)

	roster := make([]agent.Descriptor, 0, len(p.Config.AgentNames))
	for _, name := range p.Config.AgentNames {
		descriptor, err := agent.Resolve(name, ectx, p.registry)
		if err != nil {
			_ = scope.Release()
			return nil, err
		}
		roster = append(roster, descriptor)
	}
	if err := scope.Release(); err != nil {
		return nil, &IOError{Op: "close", Path: p.Config.ArtifactPath(config.AgentLoadLog), Err: err}
	}
	for _, descriptor := range roster {
		fmt.Fprintf(console, "  Loaded: %s\n", descriptor.Agent.Name())
	}
	return roster, nil
}

// run holds the open sinks for the running phase.
type run struct {
	tracking  *results.TrackingWriter
	resultsF  *os.File
	progress  *logging.Logger
	store     *results.Store
	gameScope *diag.Scope
}

// close restores the diagnostic channel and releases every sink. The
// restore happens first and unconditionally.
func (r *run) close() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	keep(r.gameScope.Release())
	keep(r.resultsF.Close())
	keep(r.progress.Close())
	if r.store != nil {
		keep(r.store.Close())
	}
	return firstErr
}

// prepare computes the expected game count, opens every sink, and
// installs the game-log redirection the running phase executes under.
func (p *Pipeline) prepare(ctx context.Context, console io.Writer) (*run, error) {
	total := p.Config.TotalGames()
	if total <= 0 {
		return nil, &config.ConfigurationError{Reason: fmt.Sprintf("expected game count must be positive (found: %d)", total)}
	}
	if err := p.ensureTournamentFolder(); err != nil {
		return nil, err
	}

	resultsPath := p.Config.ArtifactPath(config.ResultsFile)
	resultsF, err := os.Create(resultsPath)
	if err != nil {
		return nil, &IOError{Op: "create", Path: resultsPath, Err: err}
	}

	var store *results.Store
	var observers []results.Observer
	if p.Config.SaveDatabase {
		store, err = results.OpenStore(ctx, p.Config.ArtifactPath(config.DatabaseFile), p.RunID)
		if err != nil {
			_ = resultsF.Close()
			return nil, &IOError{Op: "open", Path: p.Config.ArtifactPath(config.DatabaseFile), Err: err}
		}
		observers = append(observers, store.Observe)
	}
	tracking := results.NewTrackingWriter(resultsF, p.Reporter, total, observers...)

	progress, err := logging.Open(p.Config.ArtifactPath(config.ProgressFile))
	if err != nil {
		_ = resultsF.Close()
		if store != nil {
			_ = store.Close()
		}
		return nil, &IOError{Op: "open", Path: p.Config.ArtifactPath(config.ProgressFile), Err: err}
	}
	progress.Printf("run %s started", p.RunID)

	p.printBanner(console, total)

	gameScope, err := p.redirectGameLogs()
	if err != nil {
		_ = resultsF.Close()
		_ = progress.Close()
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}
	return &run{
		tracking:  tracking,
		resultsF:  resultsF,
		progress:  progress,
		store:     store,
		gameScope: gameScope,
	}, nil
}

// redirectGameLogs installs the running phase's diagnostic destination:
// real log files when requested, a discarding sink otherwise.
func (p *Pipeline) redirectGameLogs() (*diag.Scope, error) {
	if !p.Config.SaveGameLogs {
		return p.Diag.Redirect(io.Discard), nil
	}
	gameLog, err := os.Create(p.Config.ArtifactPath(config.GameLogFile))
	if err != nil {
		return nil, &IOError{Op: "create", Path: p.Config.ArtifactPath(config.GameLogFile), Err: err}
	}
	errorLog, err := os.Create(p.Config.ArtifactPath(config.ErrorLogFile))
	if err != nil {
		_ = gameLog.Close()
		return nil, &IOError{Op: "create", Path: p.Config.ArtifactPath(config.ErrorLogFile), Err: err}
	}
	return p.Diag.RedirectPair(gameLog, errorLog), nil
}

func (p *Pipeline) ensureTournamentFolder() error {
	if err := os.MkdirAll(p.Config.TournamentFolder, 0o755); err != nil {
		return &IOError{Op: "create", Path: p.Config.TournamentFolder, Err: err}
	}
	return nil
}

func (p *Pipeline) printBanner(console io.Writer, total int) {
	c := p.Config
	fmt.Fprintf(console, "\nTournament Configuration:\n")
	fmt.Fprintf(console, "  Iterations per matchup: %d\n", c.Iterations)
	fmt.Fprintf(console, "  Max game length: %d frames\n", c.MaxGameLength)
	fmt.Fprintf(console, "  Time budget: %d ms\n", c.TimeBudgetMS)
	fmt.Fprintf(console, "  Iterations budget: %d\n", c.IterationBudget)
	fmt.Fprintf(console, "  Pre-analysis budget: %d ms\n", c.PreAnalysisBudgetMS)
	fmt.Fprintf(console, "  Full observability: %v\n", c.FullObservability)
	fmt.Fprintf(console, "  Self matches: %v\n", c.SelfMatches)
	fmt.Fprintf(console, "  Timeout check: %v\n", c.TimeoutCheck)
	fmt.Fprintf(console, "  Run GC: %v\n", c.RunGC)
	fmt.Fprintf(console, "  Save traces: %v\n", c.SaveTraces)
	fmt.Fprintf(console, "\nTotal games to play: %d\n", total)
	fmt.Fprintf(console, "\nStarting tournament...\n\n")
}

func (p *Pipeline) summarize(console io.Writer) {
	fmt.Fprintf(console, "\n============================================================\n")
	fmt.Fprintf(console, "Tournament completed successfully!\n")
	fmt.Fprintf(console, "Results saved to: %s\n", p.Config.ArtifactPath(config.ResultsFile))
	if p.Config.SaveDatabase {
		fmt.Fprintf(console, "Results database: %s\n", p.Config.ArtifactPath(config.DatabaseFile))
	}
	if p.Config.SaveGameLogs {
		gameSize := fileSize(p.Config.ArtifactPath(config.GameLogFile))
		errorSize := fileSize(p.Config.ArtifactPath(config.ErrorLogFile))
		if gameSize > 0 {
			fmt.Fprintf(console, "Game logs saved to: %s (%d MB)\n", p.Config.ArtifactPath(config.GameLogFile), gameSize/(1024*1024))
		}
		if errorSize > 0 {
			fmt.Fprintf(console, "Error logs saved to: %s (%d MB)\n", p.Config.ArtifactPath(config.ErrorLogFile), errorSize/(1024*1024))
		}
		if gameSize > logSizeWarnBytes || errorSize > logSizeWarnBytes {
			fmt.Fprintf(console, "WARNING: Log files are very large. Consider disabling game logs with 'saveGameLogs: false'.\n")
		}
	}
	fmt.Fprintf(console, "============================================================\n")
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
