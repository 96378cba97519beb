package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"marketplace-admin/internal/repository"
)

const createDocumentsTable = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	body TEXT NOT NULL,
	seq INTEGER NOT NULL,
	PRIMARY KEY (collection, id)
);
`

// DocumentRepository keeps JSON bodies in a single table; List returns them
// in insertion order.
type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) repository.DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createDocumentsTable); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Put(ctx context.Context, collection, id string, body []byte) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (collection, id, body, seq)
VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM documents))
ON CONFLICT(collection, id) DO UPDATE SET body = excluded.body`,
		collection,
		id,
		string(body),
	)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (r *DocumentRepository) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var body string
	err := r.db.QueryRowContext(ctx, `
SELECT body FROM documents WHERE collection = ? AND id = ?`,
		collection,
		id,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return []byte(body), nil
}

func (r *DocumentRepository) List(ctx context.Context, collection string) ([][]byte, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT body FROM documents WHERE collection = ? ORDER BY seq ASC`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var bodies [][]byte
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		bodies = append(bodies, []byte(body))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return bodies, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, collection, id string) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection,
		id,
	)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s/%s rows affected: %w", collection, id, err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) Count(ctx context.Context, collection string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM documents WHERE collection = ?`, collection).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}
