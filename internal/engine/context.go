// internal/engine/context.go
//
// The engine context is the shared handle agents and runners need at
// construction time: the unit roster for the current ruleset plus the
// observability mode for the run. One context is created per process
// invocation and treated as read-only afterwards.

package engine

// UnitType describes one entry in the engine's unit roster.
type UnitType struct {
	Name   string
	Cost   int
	HP     int
	Attack int
	Speed  int
}

// Context carries engine state required to construct agents and to play
// matches. It is created once per run and never mutated afterwards.
type Context struct {
	Units             []UnitType
	FullObservability bool
}

// defaultUnits mirrors the standard ruleset. Agents index into this table
// when scoring build orders, so the ordering is part of the contract.
var defaultUnits = []UnitType{
	{Name: "Worker", Cost: 1, HP: 1, Attack: 1, Speed: 10},
	{Name: "Light", Cost: 2, HP: 4, Attack: 2, Speed: 8},
	{Name: "Heavy", Cost: 3, HP: 8, Attack: 4, Speed: 4},
	{Name: "Ranged", Cost: 2, HP: 1, Attack: 1, Speed: 8},
	{Name: "Base", Cost: 10, HP: 10, Attack: 0, Speed: 0},
	{Name: "Barracks", Cost: 5, HP: 4, Attack: 0, Speed: 0},
}

// NewContext returns a context with the default unit roster.
func NewContext() *Context {
	units := make([]UnitType, len(defaultUnits))
	copy(units, defaultUnits)
	return &Context{Units: units, FullObservability: true}
}

// UnitByName looks up a unit type by name. The second return reports
// whether the roster contains it.
func (c *Context) UnitByName(name string) (UnitType, bool) {
	for _, u := range c.Units {
		if u.Name == name {
			return u, true
		}
	}
	return UnitType{}, false
}
