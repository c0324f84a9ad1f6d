package port

import (
	"context"

	"bookingcore/internal/core/domain"
)

// EntityStore is the transactional record store the coordinator runs against.
type EntityStore interface {
	// WithinTx runs fn inside a single atomic unit of work. Records read
	// through the EntityTx must stay stable until commit with respect to
	// other units touching the same rows. A non-nil error from fn, or a
	// failed commit, discards every write.
	WithinTx(ctx context.Context, fn func(tx EntityTx) error) error
}

// EntityTx exposes record access inside one unit of work. Find methods
// return (nil, nil) when the record does not exist.
type EntityTx interface {
	FindMember(ctx context.Context, id int64) (*domain.Member, error)
	FindItem(ctx context.Context, id int64) (*domain.InventoryItem, error)
	FindBooking(ctx context.Context, id int64) (*domain.Booking, error)

	// CreateBooking persists a new booking and returns the store-assigned id.
	CreateBooking(ctx context.Context, b *domain.Booking) (int64, error)

	UpdateMember(ctx context.Context, m *domain.Member) error
	UpdateItem(ctx context.Context, it *domain.InventoryItem) error
	UpdateBooking(ctx context.Context, b *domain.Booking) error

	// Seeding support.
	CreateMember(ctx context.Context, m *domain.Member) (int64, error)
	CreateItem(ctx context.Context, it *domain.InventoryItem) (int64, error)
	CountMembers(ctx context.Context) (int, error)
	CountItems(ctx context.Context) (int, error)
	ListItems(ctx context.Context) ([]domain.InventoryItem, error)
}
