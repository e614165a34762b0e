package harness

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name string `json:"name"`

	// Query is the canonical JSON of the query.
	Query string `json:"query"`

	// IDs are the ids of the matched documents in id order.
	IDs []int64 `json:"ids"`

	// Labels holds the label of each matched document, parallel to IDs.
	// Empty when the scenario has no label field.
	Labels []string `json:"labels,omitempty"`

	// SyntaxError is the compile error message, if the query was rejected.
	SyntaxError string `json:"syntax_error,omitempty"`

	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// AddError adds a failed expectation and marks the case as failed.
func (c *CaseResult) AddError(err string) {
	c.Errors = append(c.Errors, err)
	c.Pass = false
}

// Result is the outcome of a scenario execution.
type Result struct {
	Scenario  string `json:"scenario"`
	Table     string `json:"table"`
	Documents int    `json:"documents"`

	// Pass indicates every case passed.
	Pass bool `json:"pass"`

	Cases []CaseResult `json:"cases"`

	// Errors collects "case: message" for every failed expectation.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(scenario string) *Result {
	return &Result{
		Scenario: scenario,
		Pass:     true,
		Cases:    []CaseResult{},
		Errors:   []string{},
	}
}

// addCase records a case result, folding its errors into the scenario.
func (r *Result) addCase(c CaseResult) {
	r.Cases = append(r.Cases, c)
	for _, err := range c.Errors {
		r.Errors = append(r.Errors, c.Name+": "+err)
	}
	if !c.Pass {
		r.Pass = false
	}
}

// Passed returns the number of passing cases.
func (r *Result) Passed() int {
	n := 0
	for _, c := range r.Cases {
		if c.Pass {
			n++
		}
	}
	return n
}
