package evidence

import (
	"context"
	"io"
)

// Repository port (append-only persistence for evidence records)
type Repository interface {
	Save(ctx context.Context, item *Item) error
	Get(ctx context.Context, tenant, caseID, id string) (*Item, error)
	ListByCase(ctx context.Context, tenant, caseID string) ([]*Item, error)
	CountByCase(ctx context.Context, tenant, caseID string) (int, error)
}

// ContentStore port (raw evidence bytes and generated artifacts)
type ContentStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}
