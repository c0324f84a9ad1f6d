// Package service holds the transaction coordinator: it wraps each Book or
// Cancel request in one atomic unit against the entity store, feeds snapshots
// to the engine and persists the mutation it returns. Rejections persist
// nothing.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bookingcore/internal/core/domain"
	"bookingcore/internal/core/engine"
	"bookingcore/internal/port"
)

type BookingService struct {
	store  port.EntityStore
	cache  port.CacheRepository // nil disables the stock gate
	engine *engine.Engine
	logger *zap.Logger
	now    func() time.Time
}

func NewBookingService(store port.EntityStore, cache port.CacheRepository, eng *engine.Engine, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		store:  store,
		cache:  cache,
		engine: eng,
		logger: logger,
		now:    time.Now,
	}
}

// Book reserves one unit of an item for a member. The returned error is
// infrastructure failure only; every business result, including rejections,
// arrives as an Outcome with nothing persisted on rejection.
func (s *BookingService) Book(ctx context.Context, memberID, itemID int64) (domain.Outcome, error) {
	gated := gateSkipped
	if memberID > 0 && itemID > 0 {
		gated = s.gateStock(ctx, itemID)
	}
	if gated == gateRefused {
		return domain.Outcome{Kind: domain.OutOfStock, Message: "inventory item is out of stock"}, nil
	}

	var out domain.Outcome
	err := s.store.WithinTx(ctx, func(tx port.EntityTx) error {
		member, err := tx.FindMember(ctx, memberID)
		if err != nil {
			return fmt.Errorf("load member %d: %w", memberID, err)
		}
		item, err := tx.FindItem(ctx, itemID)
		if err != nil {
			return fmt.Errorf("load item %d: %w", itemID, err)
		}

		out = s.engine.EvaluateBooking(member, item, memberID, itemID, s.now())
		if out.Mutation == nil {
			return nil
		}

		id, err := tx.CreateBooking(ctx, out.Mutation.NewBooking)
		if err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		out.BookingID = id
		if err := tx.UpdateMember(ctx, out.Mutation.UpdatedMember); err != nil {
			return fmt.Errorf("update member %d: %w", memberID, err)
		}
		if err := tx.UpdateItem(ctx, out.Mutation.UpdatedItem); err != nil {
			return fmt.Errorf("update item %d: %w", itemID, err)
		}
		return nil
	})
	if err != nil {
		if gated == gatePassed {
			s.restoreGate(ctx, itemID)
		}
		return domain.Outcome{}, fmt.Errorf("book transaction: %w", err)
	}

	if !out.Succeeded() && gated == gatePassed {
		// The mirror took a unit the store never gave out.
		s.restoreGate(ctx, itemID)
	}
	if out.Succeeded() {
		s.logger.Info("booking created",
			zap.Int64("bookingID", out.BookingID),
			zap.Int64("memberID", memberID),
			zap.Int64("itemID", itemID))
	}
	return out, nil
}

// Cancel marks a booking cancelled and reverses the member and item counters
// where the linked records allow it. Anomalies on that best-effort reversal
// are logged as warnings and do not fail the cancellation.
func (s *BookingService) Cancel(ctx context.Context, bookingID int64) (domain.Outcome, error) {
	var out domain.Outcome
	err := s.store.WithinTx(ctx, func(tx port.EntityTx) error {
		booking, err := tx.FindBooking(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("load booking %d: %w", bookingID, err)
		}

		var member *domain.Member
		var item *domain.InventoryItem
		if booking != nil {
			if member, err = tx.FindMember(ctx, booking.MemberID); err != nil {
				return fmt.Errorf("load member %d: %w", booking.MemberID, err)
			}
			if item, err = tx.FindItem(ctx, booking.InventoryItemID); err != nil {
				return fmt.Errorf("load item %d: %w", booking.InventoryItemID, err)
			}
		}

		out = s.engine.EvaluateCancellation(booking, member, item, bookingID)
		if out.Mutation == nil {
			return nil
		}

		if err := tx.UpdateBooking(ctx, out.Mutation.UpdatedBooking); err != nil {
			return fmt.Errorf("update booking %d: %w", bookingID, err)
		}
		if out.Mutation.UpdatedMember != nil {
			if err := tx.UpdateMember(ctx, out.Mutation.UpdatedMember); err != nil {
				return fmt.Errorf("update member %d: %w", out.Mutation.UpdatedMember.ID, err)
			}
		}
		if out.Mutation.UpdatedItem != nil {
			if err := tx.UpdateItem(ctx, out.Mutation.UpdatedItem); err != nil {
				return fmt.Errorf("update item %d: %w", out.Mutation.UpdatedItem.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("cancel transaction: %w", err)
	}

	for _, w := range out.Warnings {
		s.logger.Warn(w, zap.Int64("bookingID", bookingID))
	}
	if out.Succeeded() {
		s.logger.Info("booking cancelled", zap.Int64("bookingID", bookingID))
		if s.cache != nil && out.Mutation.UpdatedItem != nil {
			if err := s.cache.IncrementStock(ctx, out.Mutation.UpdatedItem.ID); err != nil {
				s.logger.Warn("stock mirror increment failed", zap.Int64("itemID", out.Mutation.UpdatedItem.ID), zap.Error(err))
			}
		}
	}
	return out, nil
}

type gateResult int

const (
	gateSkipped gateResult = iota // no cache configured or cache unreachable
	gatePassed
	gateRefused
)

// gateStock consults the cache mirror before the transaction. A cache error
// is a warning, not a failure: the store decides stock authoritatively.
func (s *BookingService) gateStock(ctx context.Context, itemID int64) gateResult {
	if s.cache == nil {
		return gateSkipped
	}
	ok, err := s.cache.DecrementStock(ctx, itemID)
	if err != nil {
		s.logger.Warn("stock mirror unavailable, falling through to store", zap.Int64("itemID", itemID), zap.Error(err))
		return gateSkipped
	}
	if !ok {
		return gateRefused
	}
	return gatePassed
}

func (s *BookingService) restoreGate(ctx context.Context, itemID int64) {
	if err := s.cache.IncrementStock(ctx, itemID); err != nil {
		s.logger.Warn("stock mirror rollback failed", zap.Int64("itemID", itemID), zap.Error(err))
	}
}
