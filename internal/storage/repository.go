package storage

import (
	"context"
	"database/sql"

	"github.com/guttosm/dipwatch/internal/archive"
)

var _ archive.Archiver = (*ArchiveRepository)(nil)

// ArchiveRepository stores archived objects in PostgreSQL.
type ArchiveRepository struct {
	db *sql.DB
}

// NewArchiveRepository constructs an ArchiveRepository over an open pool.
// The archive_objects table must exist (see Migrate).
func NewArchiveRepository(db *sql.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// Put records (or replaces) an object for container/key.
func (r *ArchiveRepository) Put(ctx context.Context, container, key string, payload []byte, contentType string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO archive_objects (container, object_key, content_type, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (container, object_key)
		DO UPDATE SET content_type = EXCLUDED.content_type,
					  payload = EXCLUDED.payload,
					  created_at = NOW()
	`, container, key, contentType, payload)
	return err
}
