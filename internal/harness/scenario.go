package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a query test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Table is the table documents are inserted into.
	// Empty selects the store's default table.
	Table string `yaml:"table,omitempty"`

	// Label is a top-level document field used to identify documents in
	// reports and labels expectations. Optional.
	Label string `yaml:"label,omitempty"`

	// Documents are inserted in order before any case runs.
	Documents []map[string]any `yaml:"documents"`

	// Cases are the queries to run.
	Cases []Case `yaml:"cases"`
}

// Case is a single query and what it must select.
type Case struct {
	// Name identifies the case within the scenario.
	Name string `yaml:"name"`

	// Query is the query as a YAML value.
	Query any `yaml:"query"`

	// Expect describes the required outcome.
	Expect Expect `yaml:"expect"`
}

// Expect specifies the outcome of a case.
// Nil fields are not checked.
type Expect struct {
	IDs         *[]int64  `yaml:"ids,omitempty"`
	Labels      *[]string `yaml:"labels,omitempty"`
	Count       *int      `yaml:"count,omitempty"`
	SyntaxError bool      `yaml:"syntax_error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "case:" vs "cases:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
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

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	for i, doc := range s.Documents {
		if doc == nil {
			return fmt.Errorf("documents[%d]: must be a mapping", i)
		}
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		seen[c.Name] = true

		if c.Query == nil {
			return fmt.Errorf("cases[%d]: query is required", i)
		}
		if err := validateExpect(i, &c.Expect, s.Label); err != nil {
			return err
		}
	}

	return nil
}

// validateExpect validates a single expectation.
func validateExpect(index int, e *Expect, label string) error {
	checks := 0
	if e.IDs != nil {
		checks++
	}
	if e.Labels != nil {
		checks++
		if label == "" {
			return fmt.Errorf("cases[%d].expect: labels requires the scenario label field", index)
		}
	}
	if e.Count != nil {
		checks++
		if *e.Count < 0 {
			return fmt.Errorf("cases[%d].expect: count must be non-negative", index)
		}
	}

	if e.SyntaxError && checks > 0 {
		return fmt.Errorf("cases[%d].expect: syntax_error cannot be combined with ids, labels or count", index)
	}
	if !e.SyntaxError && checks == 0 {
		return fmt.Errorf("cases[%d].expect: one of ids, labels, count or syntax_error is required", index)
	}
	return nil
}
