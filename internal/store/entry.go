package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/pookieverse/apiserver/types"
)

// EntryRepository handles persistence for scrapbook entries.
type EntryRepository struct {
	db *sql.DB
}

func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// List returns every entry ordered by date descending, newest first.
// Ties are broken by created_at and id so the order is deterministic.
func (r *EntryRepository) List(ctx context.Context) ([]types.Entry, error) {
	const query = `
		SELECT id, title, date, image_url, description, created_at, updated_at
		FROM entries
		ORDER BY date DESC, created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]types.Entry, 0)
	for rows.Next() {
		var entry types.Entry
		if err := rows.Scan(
			&entry.ID,
			&entry.Title,
			&entry.Date,
			&entry.ImageUrl,
			&entry.Description,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *EntryRepository) Get(ctx context.Context, id string) (types.Entry, error) {
	const query = `
		SELECT id, title, date, image_url, description, created_at, updated_at
		FROM entries
		WHERE id = $1`
	var entry types.Entry
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&entry.ID,
		&entry.Title,
		&entry.Date,
		&entry.ImageUrl,
		&entry.Description,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Entry{}, ErrNotFound
		}
		return types.Entry{}, err
	}
	return entry, nil
}

func (r *EntryRepository) Create(ctx context.Context, entry types.Entry) (types.Entry, error) {
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	const query = `
		INSERT INTO entries (id, title, date, image_url, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.Title,
		entry.Date,
		entry.ImageUrl,
		entry.Description,
		entry.CreatedAt,
		entry.UpdatedAt,
	); err != nil {
		return types.Entry{}, err
	}

	return entry, nil
}

func (r *EntryRepository) Update(ctx context.Context, entry types.Entry) (types.Entry, error) {
	entry.UpdatedAt = time.Now()

	const query = `
		UPDATE entries
		SET title = $1,
			date = $2,
			image_url = $3,
			description = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		entry.Title,
		entry.Date,
		entry.ImageUrl,
		entry.Description,
		entry.UpdatedAt,
		entry.ID,
	)
	if err != nil {
		return types.Entry{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Entry{}, err
	}
	if affected == 0 {
		return types.Entry{}, ErrNotFound
	}

	return entry, nil
}

func (r *EntryRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM entries WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
