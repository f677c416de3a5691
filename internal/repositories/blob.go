package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/stripd/internal/shared"
)

// BlobRepository implements [Storage] on the SQLite blobs table.
type BlobRepository struct {
	db *sql.DB
}

// NewBlobRepository creates a new [BlobRepository] with the given database connection
func NewBlobRepository(db *sql.DB) *BlobRepository {
	return &BlobRepository{db: db}
}

// Len returns the byte length of the blob under key.
func (r *BlobRepository) Len(key string) (int, bool, error) {
	var n int
	err := r.db.QueryRow(`SELECT length(value) FROM blobs WHERE key = ?`, key).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: failed to query blob length: %v", shared.ErrStorage, err)
	}
	return n, true, nil
}

// GetRaw reads the blob under key into buf, growing it when needed.
func (r *BlobRepository) GetRaw(key string, buf []byte) ([]byte, bool, error) {
	var value []byte
	err := r.db.QueryRow(`SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to query blob: %v", shared.ErrStorage, err)
	}
	return append(buf[:0], value...), true, nil
}

// PutRaw inserts or overwrites the blob under key.
func (r *BlobRepository) PutRaw(key string, data []byte) error {
	if data == nil {
		data = []byte{}
	}

	query := `
		INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, key, data, time.Now()); err != nil {
		return fmt.Errorf("%w: failed to write blob: %v", shared.ErrStorage, err)
	}
	return nil
}

// UpdatedAt returns when the blob under key was last written.
func (r *BlobRepository) UpdatedAt(key string) (time.Time, bool, error) {
	var at time.Time
	err := r.db.QueryRow(`SELECT updated_at FROM blobs WHERE key = ?`, key).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: failed to query blob timestamp: %v", shared.ErrStorage, err)
	}
	return at, true, nil
}
