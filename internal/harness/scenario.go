package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/streamcalc/internal/engine"
	"github.com/roach88/streamcalc/internal/rules"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Profile selects the rule profile. Empty means rules.DefaultProfile.
	Profile string `yaml:"profile,omitempty"`

	// Trace is the trace level. Empty means minimal, so trace assertions
	// have steps to look at.
	Trace string `yaml:"trace,omitempty"`

	// Variables are bindings shared by every case.
	Variables map[string]float64 `yaml:"variables,omitempty"`

	// Cases are evaluated in order.
	Cases []Case `yaml:"cases"`

	// Assertions validate traces and the journal after all cases ran.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Case is one input and its expected outcome. Exactly one of Expect,
// Within and Error must be set.
type Case struct {
	Name  string `yaml:"name"`
	Input string `yaml:"input"`

	// Expect is the exact canonical output text.
	Expect string `yaml:"expect,omitempty"`

	// Within accepts a numeric output close to a value.
	Within *Tolerance `yaml:"within,omitempty"`

	// Error is the expected fatal error code (e.g. DIVISION_BY_ZERO).
	Error string `yaml:"error,omitempty"`

	// Kind optionally checks the result kind (number, solution, ...).
	Kind string `yaml:"kind,omitempty"`

	// Variables override the scenario bindings for this case.
	Variables map[string]float64 `yaml:"variables,omitempty"`
}

// Tolerance is a numeric expectation.
type Tolerance struct {
	Value float64 `yaml:"value"`
	Delta float64 `yaml:"delta"`
}

// Assertion validates a case trace or the journal.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count, final_state.
	Type string `yaml:"type"`

	// Case names the case whose trace is checked (trace assertions).
	Case string `yaml:"case,omitempty"`

	// Rule is the rule id (trace_contains, trace_count).
	Rule string `yaml:"rule,omitempty"`

	// Rules is the expected rule order (trace_order).
	Rules []string `yaml:"rules,omitempty"`

	// Count is the expected number of steps (trace_count).
	Count int `yaml:"count,omitempty"`

	// Table is the journal table (final_state).
	Table string `yaml:"table,omitempty"`

	// Where specifies query filters (final_state). All fields must match.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected column values (final_state, subset match).
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML and validates it.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "case:" vs "cases:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}
	if _, err := rules.ParseProfile(s.Profile); err != nil {
		return err
	}
	if s.Trace != "" {
		if _, err := engine.ParseTraceLevel(s.Trace); err != nil {
			return err
		}
	}

	names := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if names[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		names[c.Name] = true
		if c.Input == "" {
			return fmt.Errorf("cases[%d]: input is required", i)
		}
		set := 0
		if c.Expect != "" {
			set++
		}
		if c.Within != nil {
			set++
		}
		if c.Error != "" {
			set++
		}
		if set != 1 {
			return fmt.Errorf("cases[%d]: exactly one of expect, within or error is required", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a, names); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion, cases map[string]bool) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertTraceContains, AssertTraceCount:
		if a.Rule == "" {
			return fmt.Errorf("assertions[%d]: rule is required for %s", index, a.Type)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertTraceOrder:
		if len(a.Rules) == 0 {
			return fmt.Errorf("assertions[%d]: rules list is required for trace_order", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
		return nil
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if !cases[a.Case] {
		return fmt.Errorf("assertions[%d]: case %q is not defined", index, a.Case)
	}
	return nil
}
