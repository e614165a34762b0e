// Package store provides SQLite-backed storage for the documents that
// queries run against.
//
// Documents are JSON objects grouped into named tables. Each document has
// a positive integer id, unique within its table, assigned on insert as
// one more than the largest id in use.
//
// # Deterministic Results
//
// Every read orders by doc_id ASC, so searches return documents in
// insertion order and repeated runs print the same output.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Read-only stores skip the journal pragmas and refuse files that were not
// created by Open.
package store
