package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// InsertMultiple appends documents to table in a single transaction and
// returns their ids in input order. Either every document is stored or
// none is.
func (s *Store) InsertMultiple(ctx context.Context, table string, bodies []any) ([]int64, error) {
	table = tableName(table)

	encoded := make([]string, len(bodies))
	for i, body := range bodies {
		data, err := marshalBody(body)
		if err != nil {
			return nil, fmt.Errorf("insert document %d: %w", i, err)
		}
		encoded[i] = data
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("insert: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	next, err := nextID(ctx, tx, table)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(encoded))
	for _, data := range encoded {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO documents (table_name, doc_id, body)
			VALUES (?, ?, ?)
		`, table, next, data); err != nil {
			return nil, fmt.Errorf("insert: %w", err)
		}
		ids = append(ids, next)
		next++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("insert: commit: %w", err)
	}

	slog.Debug("documents inserted", "table", table, "count", len(ids))
	return ids, nil
}

// Merge stores every document of docs under its id in one transaction,
// replacing any document already there. Ids must be positive.
func (s *Store) Merge(ctx context.Context, table string, docs map[int64]any) error {
	table = tableName(table)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("merge: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for id, body := range docs {
		if id <= 0 {
			return fmt.Errorf("merge: document id must be positive, got %d", id)
		}
		data, err := marshalBody(body)
		if err != nil {
			return fmt.Errorf("merge document %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO documents (table_name, doc_id, body)
			VALUES (?, ?, ?)
			ON CONFLICT(table_name, doc_id) DO UPDATE SET body = excluded.body
		`, table, id, data); err != nil {
			return fmt.Errorf("merge: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("merge: commit: %w", err)
	}

	slog.Debug("documents merged", "table", table, "count", len(docs))
	return nil
}

func nextID(ctx context.Context, tx *sql.Tx, table string) (int64, error) {
	var last int64
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(doc_id), 0) FROM documents WHERE table_name = ?
	`, table).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}
	return last + 1, nil
}
