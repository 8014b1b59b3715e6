// internal/agent/resolver.go
//
// Name resolution: externally loaded bundle types win over the built-in
// roster, and built-ins are probed through a fixed namespace precedence.
// A type that is found but fails to construct is a terminal failure for
// that name — only "not found" advances to the next candidate.

package agent

import (
	"fmt"
	"strings"

	"github.com/arenalab/arena/internal/engine"
)

// ResolutionError reports that a configured agent name could not be turned
// into a live agent. Err is nil when no type was found at all, and carries
// the construction failure when a located type failed to build.
type ResolutionError struct {
	Name string
	Err  error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("agent: construct %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("agent: could not find AI: %s", e.Name)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ClassName strips a trailing parenthesized parameter suffix, so
// "NaiveMCTS(200)" resolves the type "NaiveMCTS".
func ClassName(name string) string {
	if idx := strings.IndexByte(name, '('); idx >= 0 {
		return name[:idx]
	}
	return name
}

// Resolve constructs the agent configured as name. Lookup order: the
// bundle registry first, then each built-in namespace in precedence order.
// The returned descriptor keeps the configured name verbatim.
func Resolve(name string, ectx *engine.Context, reg *Registry) (Descriptor, error) {
	className := ClassName(name)

	if reg != nil {
		if loadable, ok := reg.Lookup(className); ok {
			return construct(name, loadable, ectx)
		}
	}

	for _, namespace := range builtinNamespaces {
		if loadable, ok := builtins[namespace+className]; ok {
			return construct(name, loadable, ectx)
		}
	}

	return Descriptor{}, &ResolutionError{Name: name}
}

func construct(name string, loadable Loadable, ectx *engine.Context) (Descriptor, error) {
	built, err := loadable.Construct(ectx)
	if err != nil {
		return Descriptor{}, &ResolutionError{Name: name, Err: err}
	}
	return Descriptor{Name: name, Agent: built}, nil
}
