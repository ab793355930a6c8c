package harness

import "github.com/roach88/streamcalc/internal/engine"

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name      string        `json:"name"`
	Input     string        `json:"input"`
	ID        string        `json:"id,omitempty"`
	Output    string        `json:"output,omitempty"`
	Kind      string        `json:"kind,omitempty"`
	ErrorCode string        `json:"error_code,omitempty"`
	Error     string        `json:"error,omitempty"`
	Pass      bool          `json:"pass"`
	Steps     []engine.Step `json:"steps,omitempty"`
}

// Rules returns the rule ids of the case trace in clock order.
func (c CaseResult) Rules() []string {
	ids := make([]string, len(c.Steps))
	for i, s := range c.Steps {
		ids[i] = s.Rule
	}
	return ids
}

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true if every case matched and every assertion held.
	Pass bool `json:"pass"`

	// Cases holds one entry per scenario case, in order.
	Cases []CaseResult `json:"cases"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Case returns the result of the named case.
func (r *Result) Case(name string) (CaseResult, bool) {
	for _, c := range r.Cases {
		if c.Name == name {
			return c, true
		}
	}
	return CaseResult{}, false
}
