package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Report renders a result as stable text for golden comparison.
//
// Syntax errors are reported without their message so that validator
// wording does not leak into golden files.
func Report(result *Result) []byte {
	var sb strings.Builder

	fmt.Fprintf(&sb, "scenario: %s\n", result.Scenario)
	fmt.Fprintf(&sb, "table: %s\n", result.Table)
	fmt.Fprintf(&sb, "documents: %d\n", result.Documents)
	passed := result.Passed()
	fmt.Fprintf(&sb, "cases: %d passed, %d failed\n", passed, len(result.Cases)-passed)

	for _, c := range result.Cases {
		status := "pass"
		if !c.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(&sb, "\n[%s] %s\n", status, c.Name)
		fmt.Fprintf(&sb, "  query: %s\n", c.Query)
		if c.SyntaxError != "" {
			sb.WriteString("  syntax error\n")
		} else {
			fmt.Fprintf(&sb, "  matched: %d %s\n", len(c.IDs), formatMatches(c))
		}
		for _, err := range c.Errors {
			fmt.Fprintf(&sb, "  error: %s\n", err)
		}
	}

	return []byte(sb.String())
}

func formatMatches(c CaseResult) string {
	parts := make([]string, len(c.IDs))
	for i, id := range c.IDs {
		if i < len(c.Labels) {
			parts[i] = fmt.Sprintf("%d:%s", id, c.Labels[i])
		} else {
			parts[i] = fmt.Sprint(id)
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// RunWithGolden executes a scenario and compares its report against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result's report against the golden
// file named after scenarioName.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Report(result))
}
