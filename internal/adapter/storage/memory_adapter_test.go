package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bookingcore/internal/core/domain"
	"bookingcore/internal/port"
)

func TestMemory_StagedWritesCommitTogether(t *testing.T) {
	store := NewMemoryAdapter()
	ctx := context.Background()

	var memberID, itemID int64
	err := store.WithinTx(ctx, func(tx port.EntityTx) error {
		var err error
		if memberID, err = tx.CreateMember(ctx, &domain.Member{Name: "m", DateJoined: time.Now()}); err != nil {
			return err
		}
		itemID, err = tx.CreateItem(ctx, &domain.InventoryItem{Title: "t", RemainingCount: 1})
		if err != nil {
			return err
		}

		// Reads inside the unit see staged writes.
		m, err := tx.FindMember(ctx, memberID)
		if err != nil {
			return err
		}
		if m == nil {
			t.Error("staged member not visible inside the unit")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = store.WithinTx(ctx, func(tx port.EntityTx) error {
		m, err := tx.FindMember(ctx, memberID)
		if err != nil {
			return err
		}
		if m == nil {
			t.Error("committed member not visible")
		}
		it, err := tx.FindItem(ctx, itemID)
		if err != nil {
			return err
		}
		if it == nil {
			t.Error("committed item not visible")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMemory_ErrorDiscardsWrites(t *testing.T) {
	store := NewMemoryAdapter()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(tx port.EntityTx) error {
		if _, err := tx.CreateMember(ctx, &domain.Member{Name: "ghost"}); err != nil {
			return err
		}
		if _, err := tx.CreateBooking(ctx, &domain.Booking{MemberID: 1, InventoryItemID: 1}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	err = store.WithinTx(ctx, func(tx port.EntityTx) error {
		n, err := tx.CountMembers(ctx)
		if err != nil {
			return err
		}
		if n != 0 {
			t.Errorf("expected no members after rollback, got %d", n)
		}
		b, err := tx.FindBooking(ctx, 1)
		if err != nil {
			return err
		}
		if b != nil {
			t.Errorf("expected no booking after rollback, got %+v", b)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMemory_FindReturnsCopies(t *testing.T) {
	store := NewMemoryAdapter()
	ctx := context.Background()

	var itemID int64
	err := store.WithinTx(ctx, func(tx port.EntityTx) error {
		var err error
		itemID, err = tx.CreateItem(ctx, &domain.InventoryItem{Title: "t", RemainingCount: 5})
		return err
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	// Mutating a returned snapshot without UpdateItem must not leak into the
	// store.
	err = store.WithinTx(ctx, func(tx port.EntityTx) error {
		it, err := tx.FindItem(ctx, itemID)
		if err != nil {
			return err
		}
		it.RemainingCount = 0
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = store.WithinTx(ctx, func(tx port.EntityTx) error {
		it, err := tx.FindItem(ctx, itemID)
		if err != nil {
			return err
		}
		if it.RemainingCount != 5 {
			t.Errorf("snapshot mutation leaked, got %d", it.RemainingCount)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMemory_CountsAndList(t *testing.T) {
	store := NewMemoryAdapter()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(tx port.EntityTx) error {
		for i := 0; i < 3; i++ {
			if _, err := tx.CreateItem(ctx, &domain.InventoryItem{Title: "t", RemainingCount: i}); err != nil {
				return err
			}
		}
		// Counts see staged creates.
		n, err := tx.CountItems(ctx)
		if err != nil {
			return err
		}
		if n != 3 {
			t.Errorf("expected staged count 3, got %d", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = store.WithinTx(ctx, func(tx port.EntityTx) error {
		items, err := tx.ListItems(ctx)
		if err != nil {
			return err
		}
		if len(items) != 3 {
			t.Errorf("expected 3 items, got %d", len(items))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMemory_UnitsSerialize(t *testing.T) {
	store := NewMemoryAdapter()
	ctx := context.Background()

	var itemID int64
	err := store.WithinTx(ctx, func(tx port.EntityTx) error {
		var err error
		itemID, err = tx.CreateItem(ctx, &domain.InventoryItem{Title: "t", RemainingCount: 0})
		return err
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	// Concurrent read-modify-write units must not lose updates.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.WithinTx(ctx, func(tx port.EntityTx) error {
				it, err := tx.FindItem(ctx, itemID)
				if err != nil {
					return err
				}
				it.RemainingCount++
				return tx.UpdateItem(ctx, it)
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	err = store.WithinTx(ctx, func(tx port.EntityTx) error {
		it, err := tx.FindItem(ctx, itemID)
		if err != nil {
			return err
		}
		if it.RemainingCount != 50 {
			t.Errorf("lost updates: expected 50, got %d", it.RemainingCount)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
