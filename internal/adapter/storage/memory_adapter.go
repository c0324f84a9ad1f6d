package storage

import (
	"context"
	"sort"
	"sync"

	"bookingcore/internal/core/domain"
	"bookingcore/internal/port"
)

// MemoryAdapter is an in-memory entity store. A store-wide mutex held for the
// whole unit of work gives the same serialization guarantee the SQL adapters
// get from locking; writes are staged and only applied when fn returns nil.
type MemoryAdapter struct {
	mu       sync.Mutex
	members  map[int64]domain.Member
	items    map[int64]domain.InventoryItem
	bookings map[int64]domain.Booking

	nextMemberID  int64
	nextItemID    int64
	nextBookingID int64
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		members:  make(map[int64]domain.Member),
		items:    make(map[int64]domain.InventoryItem),
		bookings: make(map[int64]domain.Booking),
	}
}

func (a *MemoryAdapter) WithinTx(ctx context.Context, fn func(tx port.EntityTx) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx := &memoryTx{
		store:    a,
		members:  make(map[int64]domain.Member),
		items:    make(map[int64]domain.InventoryItem),
		bookings: make(map[int64]domain.Booking),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type memoryTx struct {
	store *MemoryAdapter

	// staged writes, keyed by id; reads consult these before the store
	members  map[int64]domain.Member
	items    map[int64]domain.InventoryItem
	bookings map[int64]domain.Booking
}

func (t *memoryTx) commit() {
	for id, m := range t.members {
		t.store.members[id] = m
	}
	for id, it := range t.items {
		t.store.items[id] = it
	}
	for id, b := range t.bookings {
		t.store.bookings[id] = b
	}
}

func (t *memoryTx) FindMember(_ context.Context, id int64) (*domain.Member, error) {
	if m, ok := t.members[id]; ok {
		return &m, nil
	}
	if m, ok := t.store.members[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (t *memoryTx) FindItem(_ context.Context, id int64) (*domain.InventoryItem, error) {
	if it, ok := t.items[id]; ok {
		return &it, nil
	}
	if it, ok := t.store.items[id]; ok {
		return &it, nil
	}
	return nil, nil
}

func (t *memoryTx) FindBooking(_ context.Context, id int64) (*domain.Booking, error) {
	if b, ok := t.bookings[id]; ok {
		return &b, nil
	}
	if b, ok := t.store.bookings[id]; ok {
		return &b, nil
	}
	return nil, nil
}

func (t *memoryTx) CreateBooking(_ context.Context, b *domain.Booking) (int64, error) {
	t.store.nextBookingID++
	staged := *b
	staged.ID = t.store.nextBookingID
	t.bookings[staged.ID] = staged
	return staged.ID, nil
}

func (t *memoryTx) UpdateMember(_ context.Context, m *domain.Member) error {
	t.members[m.ID] = *m
	return nil
}

func (t *memoryTx) UpdateItem(_ context.Context, it *domain.InventoryItem) error {
	t.items[it.ID] = *it
	return nil
}

func (t *memoryTx) UpdateBooking(_ context.Context, b *domain.Booking) error {
	t.bookings[b.ID] = *b
	return nil
}

func (t *memoryTx) CreateMember(_ context.Context, m *domain.Member) (int64, error) {
	t.store.nextMemberID++
	staged := *m
	staged.ID = t.store.nextMemberID
	t.members[staged.ID] = staged
	return staged.ID, nil
}

func (t *memoryTx) CreateItem(_ context.Context, it *domain.InventoryItem) (int64, error) {
	t.store.nextItemID++
	staged := *it
	staged.ID = t.store.nextItemID
	t.items[staged.ID] = staged
	return staged.ID, nil
}

func (t *memoryTx) CountMembers(_ context.Context) (int, error) {
	return len(t.store.members) + countNew(t.members, t.store.members), nil
}

func (t *memoryTx) CountItems(_ context.Context) (int, error) {
	return len(t.store.items) + countNew(t.items, t.store.items), nil
}

func countNew[V any](staged, committed map[int64]V) int {
	n := 0
	for id := range staged {
		if _, ok := committed[id]; !ok {
			n++
		}
	}
	return n
}

func (t *memoryTx) ListItems(_ context.Context) ([]domain.InventoryItem, error) {
	merged := make(map[int64]domain.InventoryItem, len(t.store.items)+len(t.items))
	for id, it := range t.store.items {
		merged[id] = it
	}
	for id, it := range t.items {
		merged[id] = it
	}

	items := make([]domain.InventoryItem, 0, len(merged))
	for _, it := range merged {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}
