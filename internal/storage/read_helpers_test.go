package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Read paths used by the tests to inspect what Put stored.

// archivedObject is one row of archive_objects.
type archivedObject struct {
	Container   string
	Key         string
	ContentType string
	Payload     []byte
	CreatedAt   time.Time
}

// get returns the object for container/key, or nil when it does not exist.
func (r *ArchiveRepository) get(ctx context.Context, container, key string) (*archivedObject, error) {
	obj := archivedObject{Container: container, Key: key}
	err := r.db.QueryRowContext(ctx,
		`SELECT content_type, payload, created_at FROM archive_objects WHERE container = $1 AND object_key = $2`,
		container, key,
	).Scan(&obj.ContentType, &obj.Payload, &obj.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

// listKeys returns the keys archived under container whose key starts with prefix, oldest first.
func (r *ArchiveRepository) listKeys(ctx context.Context, container, prefix string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT object_key FROM archive_objects WHERE container = $1 AND object_key LIKE $2 ORDER BY created_at, object_key`,
		container, prefix+"%",
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
