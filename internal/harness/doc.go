// Package harness runs query scenarios against a throwaway document store.
//
// A scenario seeds a table with documents, compiles each of its queries and
// checks the documents each query selects. Results render as a stable text
// report suitable for golden file comparison.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: players
//	description: "What this scenario validates"
//	label: name          # document field shown in reports (optional)
//	documents:
//	  - {name: bob, age: 12}
//	  - {name: alice, age: 14}
//	cases:
//	  - name: older than 13
//	    query: {age: {$gt: 13}}
//	    expect:
//	      labels: [alice]
//	  - name: bare operator
//	    query: {$gt: 13}
//	    expect:
//	      syntax_error: true
//
// Documents get ids 1..n in order.
//
// # Expectations
//
//   - ids: exact ids of the matching documents, in id order
//   - labels: exact label values of the matching documents, in id order
//   - count: number of matching documents
//   - syntax_error: the query must be rejected at compile time
//
// syntax_error cannot be combined with the other expectations.
//
// # Isolation
//
// Each scenario runs in a fresh in-memory SQLite database.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/players.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(harness.Report(result))
package harness
