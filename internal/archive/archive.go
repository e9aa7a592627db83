package archive

import (
	"context"
	"path"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain; charset=utf-8"
)

// Archiver persists one opaque object under container/key.
// Writing the same key twice replaces the earlier object.
type Archiver interface {
	Put(ctx context.Context, container, key string, payload []byte, contentType string) error
}

// DipsKey is the object key of the dip list archived for date (YYYY-MM-DD).
func DipsKey(date string) string {
	return path.Join(date, "dips.json")
}

// EmailKey is the object key of the rendered email body archived for date.
func EmailKey(date string) string {
	return path.Join(date, "email.txt")
}
