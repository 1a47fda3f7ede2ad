package storage

import (
	"context"
	"io"
)

// WaiverStorage is the narrow contract the customer service needs; the R2
// implementation satisfies it, and tests swap in an in-memory fake.
type WaiverStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
