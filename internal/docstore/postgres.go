package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type postgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a Store over the documents table. The table is
// created by the database migrations.
func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

// List returns the documents of a collection in insertion order
func (s *postgresStore) List(ctx context.Context, collection string) ([]Record, error) {
	query := `
		SELECT id, data
		FROM documents
		WHERE collection = $1
		ORDER BY seq
	`

	rows, err := s.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc, err := decodeJSON(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, Record{ID: id, Data: doc})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return records, nil
}

// Get returns one document by id
func (s *postgresStore) Get(ctx context.Context, collection, id string) (Record, error) {
	query := `SELECT data FROM documents WHERE collection = $1 AND id = $2`

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("failed to get document: %w", err)
	}

	doc, err := decodeJSON(raw)
	if err != nil {
		return Record{}, err
	}
	return Record{ID: id, Data: doc}, nil
}

// Set creates a document or replaces its data, keeping its position
func (s *postgresStore) Set(ctx context.Context, collection, id string, doc Document) error {
	raw, err := encodeJSON(doc)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, collection, id, raw); err != nil {
		return fmt.Errorf("failed to set document: %w", err)
	}
	return nil
}

// Update shallow-merges patch into the stored document
func (s *postgresStore) Update(ctx context.Context, collection, id string, patch Document) error {
	raw, err := encodeJSON(patch)
	if err != nil {
		return err
	}

	query := `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2
	`

	result, err := s.db.ExecContext(ctx, query, collection, id, raw)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document; a missing id is not an error
func (s *postgresStore) Delete(ctx context.Context, collection, id string) error {
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`

	if _, err := s.db.ExecContext(ctx, query, collection, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *postgresStore) Close() error {
	return s.db.Close()
}

func encodeJSON(doc Document) (string, error) {
	if doc == nil {
		doc = Document{}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	return string(raw), nil
}

func decodeJSON(raw []byte) (Document, error) {
	doc := Document{}
	if len(raw) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}
