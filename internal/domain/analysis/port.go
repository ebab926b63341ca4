package analysis

import "context"

// Repository port for persisting and querying analyses. Storage is append-only:
// there is no update.
type Repository interface {
	Save(ctx context.Context, r *Record) error
	// Get returns (nil, nil) when no record has the id.
	Get(ctx context.Context, id string) (*Record, error)
	// ListByOwner returns newest first. An empty owner lists anonymous records.
	ListByOwner(ctx context.Context, ownerID string, page, pageSize int) ([]*Record, error)
}

// Archive keeps a copy of a stored record outside the database.
type Archive interface {
	Put(ctx context.Context, r *Record) (string, error)
}
