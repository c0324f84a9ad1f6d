// Stress client: fires concurrent Book requests at a single item and checks
// that exactly the available stock is handed out, never more.
package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"bookingcore/internal/adapter/storage"
	"bookingcore/internal/core/domain"
	"bookingcore/internal/core/engine"
	"bookingcore/internal/core/service"
	"bookingcore/internal/port"
)

const (
	initialStock  = 20
	totalRequests = 50
)

func main() {
	ctx := context.Background()

	db, err := storage.OpenSQLite(":memory:")
	if err != nil {
		log.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	store := storage.NewSQLiteAdapter(db)
	if err := store.InitSchema(ctx); err != nil {
		log.Fatalf("init schema: %v", err)
	}

	var itemID int64
	memberIDs := make([]int64, totalRequests)
	err = store.WithinTx(ctx, func(tx port.EntityTx) error {
		itemID, err = tx.CreateItem(ctx, &domain.InventoryItem{
			Title:          "stress-item",
			RemainingCount: initialStock,
			ExpirationDate: time.Now().AddDate(1, 0, 0),
		})
		if err != nil {
			return err
		}
		for i := range memberIDs {
			memberIDs[i], err = tx.CreateMember(ctx, &domain.Member{
				Name:       fmt.Sprintf("member-%d", i),
				DateJoined: time.Now(),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	svc := service.NewBookingService(store, nil, engine.New(engine.DefaultMaxBookings), zap.NewNop())

	var successCount atomic.Int32
	var rejectCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(memberID int64) {
			defer wg.Done()
			out, err := svc.Book(ctx, memberID, itemID)
			if err != nil {
				log.Printf("book error: %v", err)
				rejectCount.Add(1)
				return
			}
			if out.Succeeded() {
				successCount.Add(1)
			} else {
				rejectCount.Add(1)
			}
		}(memberIDs[i])
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	rejected := rejectCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Rejected:         %d\n", rejected)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == initialStock && rejected == totalRequests-initialStock {
		fmt.Printf("PASS: Exactly %d bookings succeeded, %d rejected\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d rejected, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, rejected)
	}

	var remaining int
	err = store.WithinTx(ctx, func(tx port.EntityTx) error {
		item, err := tx.FindItem(ctx, itemID)
		if err != nil {
			return err
		}
		remaining = item.RemainingCount
		return nil
	})
	if err != nil {
		log.Fatalf("final read: %v", err)
	}

	fmt.Printf("Final Stock: %d\n", remaining)
	if remaining == 0 {
		fmt.Println("PASS: Stock depleted to 0")
	} else {
		fmt.Printf("FAIL: Expected stock 0, got %d\n", remaining)
	}
}
