package tournament

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arenalab/arena/internal/agent"
	"github.com/arenalab/arena/internal/bundle"
	"github.com/arenalab/arena/internal/config"
	"github.com/arenalab/arena/internal/diag"
	"github.com/arenalab/arena/internal/engine"
	"github.com/arenalab/arena/internal/match"
	"github.com/arenalab/arena/internal/results"
)

func testConfig(t *testing.T) config.Tournament {
	t.Helper()
	dir := t.TempDir()
	scenario := filepath.Join(dir, "bases8x8.xml")
	if err := os.WriteFile(scenario, []byte("<map/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.TournamentFolder = filepath.Join(dir, "tournament_1")
	cfg.Scenarios = []string{scenario}
	cfg.AgentNames = []string{"WorkerRush", "PassiveAI"}
	cfg.Iterations = 3
	cfg.MaxGameLength = 100
	return cfg
}

func newTestPipeline(cfg config.Tournament, console io.Writer) (*Pipeline, *diag.Channel) {
	channel := diag.NewChannel(console, console)
	runner := &RoundRobin{Engine: match.Scripted{}, Diag: channel}
	return &Pipeline{Config: cfg, Diag: channel, Runner: runner, RunID: "test-run"}, channel
}

func TestPipelineEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	console := &bytes.Buffer{}
	p, channel := newTestPipeline(cfg, console)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if p.State() != StateDone {
		t.Fatalf("expected done state, got %s", p.State())
	}
	if channel.Out() != console {
		t.Fatalf("diagnostic sink identity not restored")
	}

	// total = 3 iterations x 1 scenario x 2 ordered pairs = 6; the only
	// report is the final one.
	if !strings.Contains(console.String(), "6/6 (100.00%)") {
		t.Fatalf("final progress report missing from console:\n%s", console.String())
	}
	if !strings.Contains(console.String(), "Total games to play: 6") {
		t.Fatalf("banner missing expected total:\n%s", console.String())
	}

	data, err := os.ReadFile(cfg.ArtifactPath(config.ResultsFile))
	if err != nil {
		t.Fatalf("results file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 result records, got %d", len(lines))
	}
	for _, artifactName := range []string{config.ProgressFile, config.AgentLoadLog, config.GameLogFile, config.ErrorLogFile} {
		if _, err := os.Stat(cfg.ArtifactPath(artifactName)); err != nil {
			t.Fatalf("expected artifact %s: %v", artifactName, err)
		}
	}
}

func TestPipelineRejectsEmptyScenarioListBeforeSideEffects(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scenarios = nil
	p, _ := newTestPipeline(cfg, io.Discard)

	err := p.Run(context.Background())
	var cerr *config.ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
	if p.State() != StateFailed {
		t.Fatalf("expected failed state, got %s", p.State())
	}
	if _, statErr := os.Stat(cfg.TournamentFolder); !os.IsNotExist(statErr) {
		t.Fatalf("tournament folder must not be created for a rejected config")
	}
}

func TestPipelineMissingBundleFolder(t *testing.T) {
	cfg := testConfig(t)
	cfg.BotSourceFolder = filepath.Join(t.TempDir(), "no_such_bots")
	console := &bytes.Buffer{}
	p, channel := newTestPipeline(cfg, console)

	err := p.Run(context.Background())
	var lerr *bundle.LoadError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *bundle.LoadError, got %v", err)
	}
	if channel.Out() != console {
		t.Fatalf("diagnostic sink identity not restored after failure")
	}
	for _, artifactName := range []string{config.AgentLoadLog, config.ResultsFile} {
		if _, statErr := os.Stat(cfg.ArtifactPath(artifactName)); !os.IsNotExist(statErr) {
			t.Fatalf("%s must never be created when bundle loading fails", artifactName)
		}
	}
}

func TestPipelineLoadsBundles(t *testing.T) {
	cfg := testConfig(t)
	bots := filepath.Join(t.TempDir(), "bots")
	if err := os.MkdirAll(bots, 0o755); err != nil {
		t.Fatal(err)
	}
	src := `package bots

func AgentTypes() []map[string]any {
	return []map[string]any{{"name": "TurtleBot", "aggression": 2.0}}
}
`
	if err := os.WriteFile(filepath.Join(bots, "turtle.go"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.BotSourceFolder = bots
	cfg.AgentNames = []string{"TurtleBot", "PassiveAI"}
	console := &bytes.Buffer{}
	p, _ := newTestPipeline(cfg, console)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(console.String(), "Loaded 1 bot(s) from bundles") {
		t.Fatalf("bundle load message missing:\n%s", console.String())
	}
	if _, err := os.Stat(cfg.ArtifactPath(config.BundleLoadLog)); err != nil {
		t.Fatalf("expected bundle load log: %v", err)
	}
	if p.Registry().Len() != 1 {
		t.Fatalf("expected 1 registered bundle type, got %d", p.Registry().Len())
	}
}

func TestPipelineResolutionFailureAbortsInOrder(t *testing.T) {
	cfg := testConfig(t)
	bots := filepath.Join(t.TempDir(), "bots")
	if err := os.MkdirAll(bots, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg.BotSourceFolder = bots
	cfg.AgentNames = []string{"A", "B(5)", "C"}

	var constructed []string
	loader := func(string) ([]agent.Loadable, error) {
		mk := func(name string, fail bool) agent.Loadable {
			return agent.Loadable{
				Name: name,
				NewWithContext: func(*engine.Context) (agent.Agent, error) {
					constructed = append(constructed, name)
					if fail {
						return nil, fmt.Errorf("broken bot")
					}
					return stubAgent{name: name}, nil
				},
			}
		}
		return []agent.Loadable{mk("A", false), mk("B", true), mk("C", false)}, nil
	}

	console := &bytes.Buffer{}
	p, channel := newTestPipeline(cfg, console)
	p.Loader = loader

	err := p.Run(context.Background())
	var rerr *agent.ResolutionError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *agent.ResolutionError, got %v", err)
	}
	if rerr.Name != "B(5)" {
		t.Fatalf("expected failure for B(5), got %q", rerr.Name)
	}
	// A then B, never C.
	if len(constructed) != 2 || constructed[0] != "A" || constructed[1] != "B" {
		t.Fatalf("expected construction order [A B], got %v", constructed)
	}
	if channel.Out() != console {
		t.Fatalf("diagnostic sink identity not restored after failure")
	}
	if _, statErr := os.Stat(cfg.ArtifactPath(config.ResultsFile)); !os.IsNotExist(statErr) {
		t.Fatalf("no results file may exist after a resolution failure")
	}
}

type stubAgent struct{ name string }

func (s stubAgent) Name() string { return s.name }
func (s stubAgent) Reset()       {}

type failingRunner struct{ err error }

func (f failingRunner) Run([]agent.Descriptor, []string, int, int, int, int, int64, int64,
	bool, bool, bool, bool, bool, *engine.Context, string, io.Writer, io.Writer, string) error {
	return f.err
}

func TestPipelineWrapsRunnerFailure(t *testing.T) {
	cfg := testConfig(t)
	console := &bytes.Buffer{}
	p, channel := newTestPipeline(cfg, console)
	boom := errors.New("engine exploded")
	p.Runner = failingRunner{err: boom}

	err := p.Run(context.Background())
	var rerr *RunnerError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *RunnerError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("runner cause must be preserved, got %v", err)
	}
	if channel.Out() != console {
		t.Fatalf("diagnostic sink identity not restored after runner failure")
	}
	if p.State() != StateFailed {
		t.Fatalf("expected failed state, got %s", p.State())
	}
}

func TestPipelineDiscardsGameLogsWhenDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.SaveGameLogs = false
	p, _ := newTestPipeline(cfg, io.Discard)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(cfg.ArtifactPath(config.GameLogFile)); !os.IsNotExist(err) {
		t.Fatalf("game log must not be written when disabled")
	}
	if _, err := os.Stat(cfg.ArtifactPath(config.ErrorLogFile)); !os.IsNotExist(err) {
		t.Fatalf("error log must not be written when disabled")
	}
}

func TestPipelineMirrorsResultsToDatabase(t *testing.T) {
	cfg := testConfig(t)
	cfg.SaveDatabase = true
	p, _ := newTestPipeline(cfg, io.Discard)

	ctx := context.Background()
	if err := p.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	store, err := results.OpenStore(ctx, cfg.ArtifactPath(config.DatabaseFile), "test-run")
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer store.Close()
	n, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != cfg.TotalGames() {
		t.Fatalf("expected %d mirrored rows, got %d", cfg.TotalGames(), n)
	}
}

func TestPipelineGameChatterGoesToLogs(t *testing.T) {
	cfg := testConfig(t)
	console := &bytes.Buffer{}
	p, _ := newTestPipeline(cfg, console)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	gameLog, err := os.ReadFile(cfg.ArtifactPath(config.GameLogFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(gameLog), "starting game") {
		t.Fatalf("game chatter must land in the game log, got %q", string(gameLog))
	}
	if strings.Contains(console.String(), "starting game") {
		t.Fatalf("game chatter leaked to the console")
	}
}
