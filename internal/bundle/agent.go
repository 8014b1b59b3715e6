package bundle

import (
	"github.com/arenalab/arena/internal/engine"
)

// strategySpec parameterizes a bundle-defined scripted agent.
type strategySpec struct {
	opening      float64
	openingSteps int
	aggression   float64
	decay        float64
}

// bundleAgent is the runtime form of a bundle definition. Under partial
// observability its effective pressure is slightly discounted, which is
// the only engine-context dependency bundle agents have.
type bundleAgent struct {
	name     string
	spec     strategySpec
	discount float64
}

func newBundleAgent(name string, spec strategySpec, ectx *engine.Context) *bundleAgent {
	a := &bundleAgent{name: name, spec: spec, discount: 1.0}
	if ectx != nil && !ectx.FullObservability {
		a.discount = 0.9
	}
	return a
}

func (a *bundleAgent) Name() string { return a.name }
func (a *bundleAgent) Reset()       {}

func (a *bundleAgent) Act(scenario string, step int) float64 {
	score := a.spec.aggression
	if step < a.spec.openingSteps {
		score = a.spec.opening
	} else if a.spec.decay > 0 {
		score = a.spec.aggression / (1.0 + float64(step)/a.spec.decay)
	}
	return score * a.discount
}
