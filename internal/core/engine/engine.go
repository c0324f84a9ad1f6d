// Package engine holds the booking state-transition logic. It is pure: it
// validates a request against entity snapshots, computes the records to
// write, and reports an Outcome. Persistence and locking belong to the
// coordinator in core/service.
package engine

import (
	"fmt"
	"time"

	"bookingcore/internal/core/domain"
)

// DefaultMaxBookings is the member quota used when no explicit limit is
// configured.
const DefaultMaxBookings = 2

type Engine struct {
	maxBookings int
}

func New(maxBookings int) *Engine {
	if maxBookings <= 0 {
		maxBookings = DefaultMaxBookings
	}
	return &Engine{maxBookings: maxBookings}
}

func (e *Engine) MaxBookings() int {
	return e.maxBookings
}

// EvaluateBooking decides a Book request. member and item are the snapshots
// loaded by the coordinator in the same transaction; nil means not found.
// Checks short-circuit in order: argument validity, member existence, item
// existence, member quota, item stock. On success the returned mutation holds
// the new booking (id unassigned, stamped with now) plus copies of the member
// and item with their counters moved.
func (e *Engine) EvaluateBooking(member *domain.Member, item *domain.InventoryItem, memberID, itemID int64, now time.Time) domain.Outcome {
	if memberID <= 0 || itemID <= 0 {
		return reject(domain.InvalidArgument, "memberId and inventoryItemId must be positive integers")
	}
	if member == nil {
		return reject(domain.MemberNotFound, fmt.Sprintf("member with ID %d not found", memberID))
	}
	if item == nil {
		return reject(domain.ItemNotFound, fmt.Sprintf("inventory item with ID %d not found", itemID))
	}
	if member.BookingCount >= e.maxBookings {
		return reject(domain.QuotaExceeded, fmt.Sprintf("member has reached the maximum allowed bookings of %d", e.maxBookings))
	}
	if item.RemainingCount <= 0 {
		return reject(domain.OutOfStock, "inventory item is out of stock")
	}

	updatedMember := *member
	updatedMember.BookingCount++
	updatedItem := *item
	updatedItem.RemainingCount--

	newBooking := &domain.Booking{
		MemberID:        memberID,
		InventoryItemID: itemID,
		BookingDateTime: now.UTC(),
		IsCancelled:     false,
	}

	return domain.Outcome{
		Kind:            domain.BookSucceeded,
		Message:         "booking successful",
		BookingDateTime: newBooking.BookingDateTime,
		Mutation: &domain.Mutation{
			NewBooking:    newBooking,
			UpdatedMember: &updatedMember,
			UpdatedItem:   &updatedItem,
		},
	}
}

// EvaluateCancellation decides a Cancel request. booking, member and item are
// the eagerly loaded snapshots; nil means not found. A missing linked member
// or item, or a member counter already at zero, does not fail the
// cancellation: the booking's own flag is the source of truth, the counter
// reversal is best effort and the anomaly is reported as a warning for the
// caller to log.
func (e *Engine) EvaluateCancellation(booking *domain.Booking, member *domain.Member, item *domain.InventoryItem, bookingID int64) domain.Outcome {
	if bookingID <= 0 {
		return reject(domain.InvalidArgument, "bookingId must be a positive integer")
	}
	if booking == nil {
		return reject(domain.BookingNotFound, fmt.Sprintf("booking with ID %d not found", bookingID))
	}
	if booking.IsCancelled {
		return reject(domain.AlreadyCancelled, fmt.Sprintf("booking with ID %d is already cancelled", bookingID))
	}

	updatedBooking := *booking
	updatedBooking.IsCancelled = true

	out := domain.Outcome{
		Kind:      domain.CancelSucceeded,
		Message:   "booking cancelled successfully",
		BookingID: booking.ID,
		Mutation:  &domain.Mutation{UpdatedBooking: &updatedBooking},
	}

	if item != nil {
		updatedItem := *item
		updatedItem.RemainingCount++
		out.Mutation.UpdatedItem = &updatedItem
	} else {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("inventory item %d for booking %d missing during cancellation, data inconsistency suspected", booking.InventoryItemID, booking.ID))
	}

	if member != nil {
		if member.BookingCount > 0 {
			updatedMember := *member
			updatedMember.BookingCount--
			out.Mutation.UpdatedMember = &updatedMember
		} else {
			out.Warnings = append(out.Warnings,
				fmt.Sprintf("member booking count for booking %d was already 0 during cancellation", booking.ID))
		}
	} else {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("member %d for booking %d missing during cancellation, data inconsistency suspected", booking.MemberID, booking.ID))
	}

	return out
}

func reject(kind domain.OutcomeKind, message string) domain.Outcome {
	return domain.Outcome{Kind: kind, Message: message}
}
