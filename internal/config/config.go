// internal/config/config.go
//
// This package holds the validated tournament request. A Tournament value is
// built once — from a JSON/YAML file or from positional CLI arguments — then
// validated and treated as immutable for the rest of the run.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tournament describes one tournament run. Field names match the original
// configuration schema so existing config files keep working.
type Tournament struct {
	TournamentFolder string   `json:"tournamentFolder" yaml:"tournamentFolder"`
	BotSourceFolder  string   `json:"botSourceFolder" yaml:"botSourceFolder"`
	Scenarios        []string `json:"maps" yaml:"maps"`
	AgentNames       []string `json:"ais" yaml:"ais"`

	Iterations          int   `json:"iterations" yaml:"iterations"`
	MaxGameLength       int   `json:"maxGameLength" yaml:"maxGameLength"`
	TimeBudgetMS        int   `json:"timeBudget" yaml:"timeBudget"`
	IterationBudget     int   `json:"iterationsBudget" yaml:"iterationsBudget"`
	PreAnalysisBudgetMS int64 `json:"preAnalysisBudget" yaml:"preAnalysisBudget"`

	FullObservability bool `json:"fullObservability" yaml:"fullObservability"`
	SelfMatches       bool `json:"selfMatches" yaml:"selfMatches"`
	TimeoutCheck      bool `json:"timeoutCheck" yaml:"timeoutCheck"`
	RunGC             bool `json:"runGC" yaml:"runGC"`
	SaveTraces        bool `json:"saveTraces" yaml:"saveTraces"`
	SaveGameLogs      bool `json:"saveGameLogs" yaml:"saveGameLogs"`
	SaveDatabase      bool `json:"saveDatabase" yaml:"saveDatabase"`
}

// ConfigurationError reports a rejected tournament request. Field names the
// offending configuration entry when one is identifiable.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config: %s", e.Reason)
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Default returns a tournament with the standard budgets filled in.
func Default() Tournament {
	return Tournament{
		Iterations:          5,
		MaxGameLength:       3000,
		TimeBudgetMS:        100,
		IterationBudget:     -1,
		PreAnalysisBudgetMS: 1000,
		FullObservability:   true,
		TimeoutCheck:        true,
		SaveGameLogs:        true,
	}
}

// Validate checks every invariant of the request. It reads scenario paths
// from disk but creates nothing; folder creation happens later in the
// pipeline so a rejected config leaves no trace.
func (t *Tournament) Validate() error {
	if strings.TrimSpace(t.TournamentFolder) == "" {
		return &ConfigurationError{Field: "tournamentFolder", Reason: "is required"}
	}
	if len(t.Scenarios) == 0 {
		return &ConfigurationError{Field: "maps", Reason: "at least 1 map is required"}
	}
	if len(t.AgentNames) < 2 {
		return &ConfigurationError{Field: "ais", Reason: fmt.Sprintf("at least 2 AIs are required (found: %d)", len(t.AgentNames))}
	}
	if t.Iterations <= 0 {
		return &ConfigurationError{Field: "iterations", Reason: fmt.Sprintf("must be positive (found: %d)", t.Iterations)}
	}
	if t.MaxGameLength <= 0 {
		return &ConfigurationError{Field: "maxGameLength", Reason: fmt.Sprintf("must be positive (found: %d)", t.MaxGameLength)}
	}
	if t.TimeBudgetMS <= 0 {
		return &ConfigurationError{Field: "timeBudget", Reason: fmt.Sprintf("must be positive (found: %d)", t.TimeBudgetMS)}
	}
	if t.PreAnalysisBudgetMS < 0 {
		return &ConfigurationError{Field: "preAnalysisBudget", Reason: fmt.Sprintf("must be >= 0 (found: %d)", t.PreAnalysisBudgetMS)}
	}
	for _, scenario := range t.Scenarios {
		if _, err := os.Stat(scenario); err != nil {
			return &ConfigurationError{Field: "maps", Reason: fmt.Sprintf("map file not found: %s", scenario)}
		}
	}
	return nil
}

// Matchups returns how many ordered agent pairings one iteration on one
// scenario produces: n² when self matches are enabled, n(n-1) otherwise.
func (t *Tournament) Matchups() int {
	n := len(t.AgentNames)
	if t.SelfMatches {
		return n * n
	}
	return n * (n - 1)
}

// TotalGames is the number of match records a complete run emits.
func (t *Tournament) TotalGames() int {
	return t.Iterations * len(t.Scenarios) * t.Matchups()
}

// requiredFields is the presence contract for config files, in the order the
// original schema documents them.
var requiredFields = []struct {
	name string
	kind string // string | number | boolean | list
}{
	{"tournamentFolder", "string"},
	{"maps", "list"},
	{"ais", "list"},
	{"iterations", "number"},
	{"maxGameLength", "number"},
	{"timeBudget", "number"},
	{"iterationsBudget", "number"},
	{"preAnalysisBudget", "number"},
	{"fullObservability", "boolean"},
	{"selfMatches", "boolean"},
	{"timeoutCheck", "boolean"},
	{"runGC", "boolean"},
	{"saveTraces", "boolean"},
}

// LoadFile reads a tournament config from a JSON or YAML file. Required
// fields must be present with the right type; optional fields
// (botSourceFolder, saveGameLogs, saveDatabase) fall back to defaults.
func LoadFile(path string) (Tournament, error) {
	var zero Tournament
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return zero, &ConfigurationError{Reason: fmt.Sprintf("configuration file not found: %s", path)}
		}
		return zero, fmt.Errorf("config: read %s: %w", path, err)
	}

	// yaml.v3 parses JSON as a YAML subset, so one decoder covers both
	// formats the CLI accepts.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return zero, &ConfigurationError{Reason: fmt.Sprintf("invalid configuration format: %v", err)}
	}
	if raw == nil {
		return zero, &ConfigurationError{Reason: "configuration file is empty or invalid"}
	}
	for _, field := range requiredFields {
		value, ok := raw[field.name]
		if !ok {
			return zero, &ConfigurationError{Field: field.name, Reason: "missing required field"}
		}
		if !matchesKind(value, field.kind) {
			return zero, &ConfigurationError{Field: field.name, Reason: fmt.Sprintf("invalid type (expected: %s)", field.kind)}
		}
	}

	t := Default()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return zero, &ConfigurationError{Reason: fmt.Sprintf("invalid configuration format: %v", err)}
	}
	t.normalize()
	if err := t.Validate(); err != nil {
		return zero, err
	}
	return t, nil
}

func matchesKind(value any, kind string) bool {
	switch kind {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		switch value.(type) {
		case int, int64, uint64, float64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "list":
		_, ok := value.([]any)
		return ok
	}
	return false
}

// ParseArgs builds a tournament from the positional command form:
//
//	<tournamentFolder> <map,map,...> <AI,AI,...> [botFolder] [--key=value] [--selfMatches]
func ParseArgs(args []string) (Tournament, error) {
	var zero Tournament
	if len(args) < 3 {
		return zero, &ConfigurationError{Reason: "at least <tournamentFolder> <maps> <AIs> are required"}
	}
	t := Default()
	t.TournamentFolder = args[0]
	for _, scenario := range strings.Split(args[1], ",") {
		if s := strings.TrimSpace(scenario); s != "" {
			t.Scenarios = append(t.Scenarios, s)
		}
	}
	for _, name := range strings.Split(args[2], ",") {
		if n := strings.TrimSpace(name); n != "" {
			t.AgentNames = append(t.AgentNames, n)
		}
	}

	rest := args[3:]
	if len(rest) > 0 && !strings.HasPrefix(rest[0], "--") {
		t.BotSourceFolder = rest[0]
		rest = rest[1:]
	}
	for _, arg := range rest {
		if !strings.HasPrefix(arg, "--") {
			return zero, &ConfigurationError{Reason: fmt.Sprintf("unexpected argument: %s", arg)}
		}
		option := strings.TrimPrefix(arg, "--")
		switch {
		case option == "selfMatches":
			t.SelfMatches = true
		case option == "saveDatabase":
			t.SaveDatabase = true
		case strings.Contains(option, "="):
			key, value, _ := strings.Cut(option, "=")
			if err := t.applyOverride(key, value); err != nil {
				return zero, err
			}
		default:
			return zero, &ConfigurationError{Reason: fmt.Sprintf("unknown option: %s", arg)}
		}
	}
	t.normalize()
	if err := t.Validate(); err != nil {
		return zero, err
	}
	return t, nil
}

func (t *Tournament) applyOverride(key, value string) error {
	parse := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, &ConfigurationError{Field: key, Reason: fmt.Sprintf("invalid number: %q", value)}
		}
		return n, nil
	}
	switch key {
	case "iterations":
		n, err := parse()
		if err != nil {
			return err
		}
		t.Iterations = n
	case "maxGameLength":
		n, err := parse()
		if err != nil {
			return err
		}
		t.MaxGameLength = n
	case "timeBudget":
		n, err := parse()
		if err != nil {
			return err
		}
		t.TimeBudgetMS = n
	case "iterationsBudget":
		n, err := parse()
		if err != nil {
			return err
		}
		t.IterationBudget = n
	default:
		return &ConfigurationError{Field: key, Reason: "unknown override"}
	}
	return nil
}

func (t *Tournament) normalize() {
	t.TournamentFolder = strings.TrimSpace(t.TournamentFolder)
	if t.TournamentFolder != "" {
		t.TournamentFolder = filepath.Clean(t.TournamentFolder)
	}
	t.BotSourceFolder = strings.TrimSpace(t.BotSourceFolder)
}

// Artifact paths, fixed relative to the tournament folder.
const (
	ResultsFile     = "tournament.csv"
	ProgressFile    = "progress.log"
	BundleLoadLog   = "jar_loading.log"
	AgentLoadLog    = "ai_loading.log"
	GameLogFile     = "game_logs.txt"
	ErrorLogFile    = "error_logs.txt"
	DatabaseFile    = "tournament.db"
	TracesSubfolder = "traces"
)

// ArtifactPath joins the tournament folder with one of the fixed artifact
// names above.
func (t *Tournament) ArtifactPath(name string) string {
	return filepath.Join(t.TournamentFolder, name)
}
