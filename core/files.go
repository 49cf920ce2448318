package core

import "context"

// FileStore is any service that can persist uploaded files (avatars,
// course thumbnails) and serve them back by URL.
type FileStore interface {
	// Save stores content under key and returns the public URL.
	Save(ctx context.Context, key string, contentType string, content []byte) (string, error)
	Delete(ctx context.Context, key string) error
}
