package match

import (
	"testing"

	"github.com/arenalab/arena/internal/agent"
	"github.com/arenalab/arena/internal/engine"
)

func build(t *testing.T, name string) agent.Agent {
	t.Helper()
	d, err := agent.Resolve(name, engine.NewContext(), nil)
	if err != nil {
		t.Fatalf("resolve %s: %v", name, err)
	}
	return d.Agent
}

func TestScriptedRushBeatsPassive(t *testing.T) {
	rush := build(t, "WorkerRush")
	pass := build(t, "PassiveAI")
	result, err := Scripted{}.Play(rush, pass, Params{Scenario: "map.xml", MaxGameLength: 3000})
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if result.Winner != 0 {
		t.Fatalf("expected the rush to win, got winner %d", result.Winner)
	}
	if result.Crashed != -1 {
		t.Fatalf("no agent should crash, got %d", result.Crashed)
	}
}

func TestScriptedIsDeterministic(t *testing.T) {
	p := Params{Scenario: "map.xml", MaxGameLength: 500}
	a := build(t, "RandomBiasedAI")
	b := build(t, "NaiveMCTS")
	first, err := Scripted{}.Play(a, b, p)
	if err != nil {
		t.Fatal(err)
	}
	a2 := build(t, "RandomBiasedAI")
	b2 := build(t, "NaiveMCTS")
	second, err := Scripted{}.Play(a2, b2, p)
	if err != nil {
		t.Fatal(err)
	}
	if first.Winner != second.Winner || first.Steps != second.Steps {
		t.Fatalf("same matchup must replay identically: %+v vs %+v", first, second)
	}
}

func TestScriptedHandlesOpaqueAgents(t *testing.T) {
	type opaque struct{ agent.Agent }
	a := opaque{build(t, "PassiveAI")}
	b := build(t, "WorkerRush")
	result, err := Scripted{}.Play(a, b, Params{Scenario: "m", MaxGameLength: 100})
	if err != nil {
		t.Fatalf("play with non-scoring agent: %v", err)
	}
	if result.Winner != 1 {
		t.Fatalf("scoring agent should beat an opaque one, got %d", result.Winner)
	}
}
