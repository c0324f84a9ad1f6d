package port

import "context"

// CacheRepository is the optional fast-path stock mirror. The relational
// store stays authoritative; the cache only lets the coordinator reject
// obviously out-of-stock requests before opening a transaction.
type CacheRepository interface {
	// DecrementStock atomically takes one unit for the item, returning false
	// when no stock remains in the mirror.
	DecrementStock(ctx context.Context, itemID int64) (bool, error)

	// IncrementStock returns one unit (cancellation, or rollback after a
	// rejected request that already passed the gate).
	IncrementStock(ctx context.Context, itemID int64) error

	// SetStock overwrites the mirrored stock for an item (warm-up).
	SetStock(ctx context.Context, itemID int64, quantity int) error

	// SetIdempotency sets a request key, returning false if it already exists.
	SetIdempotency(ctx context.Context, key string) (bool, error)
}
