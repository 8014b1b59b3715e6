// internal/bundle/loader.go
//
// Bot bundles are directories of .go files evaluated at runtime with
// yaegi. Each file must declare
//
//	func AgentTypes() []map[string]any
//
// (optionally with an error second return). Every map describes one
// loadable agent type: a "name" plus the scripted-strategy parameters
// understood by bundleAgent. This fills the role compiled bot archives
// play in other engines: drop files in a folder, get constructible types.

package bundle

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/arenalab/arena/internal/agent"
	"github.com/arenalab/arena/internal/engine"
)

const agentTypesFuncName = "AgentTypes"

// LoadError reports a failed bundle-loading phase.
type LoadError struct {
	Folder string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("bundle: load %s: %v", e.Folder, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader yields loadable agent types from a folder. The pipeline consumes
// this capability; LoadAgentTypes is the default implementation.
type Loader func(folder string) ([]agent.Loadable, error)

// LoadAgentTypes evaluates every .go file under folder and collects the
// agent types they declare. The folder must exist and be a directory;
// duplicate type names across files are an error.
func LoadAgentTypes(folder string) ([]agent.Loadable, error) {
	trimmed := strings.TrimSpace(folder)
	info, err := os.Stat(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Folder: trimmed, Err: fmt.Errorf("folder not found")}
		}
		return nil, &LoadError{Folder: trimmed, Err: err}
	}
	if !info.IsDir() {
		return nil, &LoadError{Folder: trimmed, Err: fmt.Errorf("not a directory")}
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		return nil, &LoadError{Folder: trimmed, Err: err}
	}

	var loadables []agent.Loadable
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		path := filepath.Join(trimmed, entry.Name())
		defs, err := loadAgentFile(path)
		if err != nil {
			return nil, &LoadError{Folder: trimmed, Err: err}
		}
		for _, def := range defs {
			if existing, ok := seen[def.Name]; ok {
				return nil, &LoadError{Folder: trimmed, Err: fmt.Errorf("duplicate agent type %s (%s and %s)", def.Name, existing, path)}
			}
			seen[def.Name] = path
			loadables = append(loadables, def)
		}
	}
	sort.Slice(loadables, func(i, j int) bool { return loadables[i].Name < loadables[j].Name })
	return loadables, nil
}

func loadAgentFile(path string) ([]agent.Loadable, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("interpreter symbols: %w", err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("interpret %s: %w", path, err)
	}
	fnValue, err := i.Eval(agentTypesFuncName)
	if err != nil {
		// Non-main packages are namespaced by yaegi; retry qualified.
		if pkg := packageName(code); pkg != "" && pkg != "main" {
			fnValue, err = i.Eval(pkg + "." + agentTypesFuncName)
		}
		if err != nil {
			return nil, fmt.Errorf("%s must define %s() ([]map[string]any, error): %w", path, agentTypesFuncName, err)
		}
	}
	defs, err := invokeAgentTypesFunc(fnValue)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	loadables := make([]agent.Loadable, 0, len(defs))
	for idx, raw := range defs {
		loadable, err := loadableFromDefinition(raw)
		if err != nil {
			return nil, fmt.Errorf("%s definition[%d]: %w", path, idx, err)
		}
		loadables = append(loadables, loadable)
	}
	return loadables, nil
}

func packageName(code []byte) string {
	f, err := parser.ParseFile(token.NewFileSet(), "", code, parser.PackageClauseOnly)
	if err != nil || f.Name == nil {
		return ""
	}
	return f.Name.Name
}

func invokeAgentTypesFunc(value reflect.Value) ([]map[string]any, error) {
	if !value.IsValid() {
		return nil, fmt.Errorf("missing %s function", agentTypesFuncName)
	}
	if value.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", agentTypesFuncName)
	}
	results := value.Call(nil)
	if len(results) == 0 || len(results) > 2 {
		return nil, fmt.Errorf("%s must return ([]map[string]any[, error])", agentTypesFuncName)
	}
	if len(results) == 2 && !results[1].IsNil() {
		if e, ok := results[1].Interface().(error); ok && e != nil {
			return nil, e
		}
		return nil, fmt.Errorf("%s returned non-error second value", agentTypesFuncName)
	}
	defsVal := results[0]
	if defs, ok := defsVal.Interface().([]map[string]any); ok {
		return defs, nil
	}
	if defsVal.Kind() == reflect.Slice {
		defs := make([]map[string]any, defsVal.Len())
		for i := 0; i < defsVal.Len(); i++ {
			entry, ok := defsVal.Index(i).Interface().(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s[%d] is not map[string]any", agentTypesFuncName, i)
			}
			defs[i] = entry
		}
		return defs, nil
	}
	return nil, fmt.Errorf("%s must return []map[string]any", agentTypesFuncName)
}

// loadableFromDefinition turns a raw definition map into a constructible
// type. Strategy parameters: "opening" (score for the first "openingSteps"
// steps), "aggression" (steady-state score) and "decay" (half-life in
// steps). Missing parameters default to a flat neutral strategy.
func loadableFromDefinition(def map[string]any) (agent.Loadable, error) {
	name, _ := def["name"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return agent.Loadable{}, fmt.Errorf("\"name\" is required")
	}
	spec := strategySpec{
		opening:      floatParam(def, "opening", 1.0),
		openingSteps: int(floatParam(def, "openingSteps", 0)),
		aggression:   floatParam(def, "aggression", 1.0),
		decay:        floatParam(def, "decay", 0),
	}
	return agent.Loadable{
		Name: name,
		NewWithContext: func(ectx *engine.Context) (agent.Agent, error) {
			return newBundleAgent(name, spec, ectx), nil
		},
	}, nil
}

func floatParam(def map[string]any, key string, fallback float64) float64 {
	switch v := def[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return fallback
}
