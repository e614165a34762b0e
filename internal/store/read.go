package store

import (
	"context"
	"fmt"
	"log/slog"
)

// Tables returns the names of the tables holding at least one document,
// sorted by name.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT table_name FROM documents
		ORDER BY table_name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

// HasTable reports whether table holds at least one document.
func (s *Store) HasTable(ctx context.Context, table string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM documents WHERE table_name = ?
	`, tableName(table)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check table: %w", err)
	}
	return n > 0, nil
}

// Scan calls fn for every document of table in id order.
// Iteration stops at the first error fn returns, which Scan passes back.
func (s *Store) Scan(ctx context.Context, table string, fn func(Document) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, body FROM documents
		WHERE table_name = ?
		ORDER BY doc_id ASC
	`, tableName(table))
	if err != nil {
		return fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			body string
		)
		if err := rows.Scan(&id, &body); err != nil {
			return fmt.Errorf("scan document: %w", err)
		}
		obj, err := unmarshalBody(body)
		if err != nil {
			return fmt.Errorf("document %d: %w", id, err)
		}
		if err := fn(Document{ID: id, Body: obj}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate documents: %w", err)
	}
	return nil
}

// Search returns the documents of table that match reports true for, in id
// order. A nil match selects every document.
//
// match receives the document body as a map[string]any, so a compiled
// query predicate can be passed directly.
func (s *Store) Search(ctx context.Context, table string, match func(doc any) bool) ([]Document, error) {
	docs := []Document{}
	scanned := 0
	err := s.Scan(ctx, table, func(doc Document) error {
		scanned++
		if match == nil || match(doc.Body) {
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", tableName(table), err)
	}

	slog.Debug("search complete", "table", tableName(table), "scanned", scanned, "matched", len(docs))
	return docs, nil
}
