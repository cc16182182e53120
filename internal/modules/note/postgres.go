package note

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// PostgresSchema creates the notes table used by the postgres repository.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS notes (
	id         UUID PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL DEFAULT '',
	attributes JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS notes_created_at_idx ON notes (created_at DESC);`

const noteColumns = `id, title, content, attributes, created_at, updated_at`

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL note repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, n *Note) error {
	attrs, err := encodeAttributes(n.Attributes)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notes (id, title, content, attributes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.Title, n.Content, attrs, n.CreatedAt, n.UpdatedAt)
	return err
}

func scanNote(scan func(...interface{}) error) (*Note, error) {
	n := &Note{}
	var attrs []byte
	if err := scan(&n.ID, &n.Title, &n.Content, &attrs, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	if attrs != nil {
		if err := json.Unmarshal(attrs, &n.Attributes); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]*Note, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+noteColumns+` FROM notes ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []*Note{}
	for rows.Next() {
		n, err := scanNote(rows.Scan)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Note, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id=$1`, uid)
	n, err := scanNote(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return n, err
}

func (r *postgresRepo) Update(ctx context.Context, id string, req UpdateNoteRequest) (*Note, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	attrs, err := encodeAttributes(req.Attributes)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE notes
		SET title = COALESCE($1, title),
		    content = COALESCE($2, content),
		    attributes = COALESCE(attributes, '{}'::jsonb) || COALESCE($3::jsonb, '{}'::jsonb),
		    updated_at = NOW()
		WHERE id = $4
		RETURNING `+noteColumns,
		req.Title, req.Content, attrs, uid)
	n, err := scanNote(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return n, err
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id=$1`, uid)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// encodeAttributes returns the JSONB text for attrs, or nil for SQL NULL.
// lib/pq sends []byte as bytea, so the document travels as a string.
func encodeAttributes(attrs map[string]interface{}) (interface{}, error) {
	if len(attrs) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
