package domain

import "time"

type OutcomeKind string

const (
	BookSucceeded    OutcomeKind = "book_succeeded"
	CancelSucceeded  OutcomeKind = "cancel_succeeded"
	InvalidArgument  OutcomeKind = "invalid_argument"
	MemberNotFound   OutcomeKind = "member_not_found"
	ItemNotFound     OutcomeKind = "item_not_found"
	BookingNotFound  OutcomeKind = "booking_not_found"
	QuotaExceeded    OutcomeKind = "quota_exceeded"
	OutOfStock       OutcomeKind = "out_of_stock"
	AlreadyCancelled OutcomeKind = "already_cancelled"
)

// Outcome is the structured result of evaluating a Book or Cancel request.
// Rejections carry only Kind and Message; successes additionally carry the
// Mutation the coordinator must persist. BookingID is filled in by the
// coordinator once the store has assigned an id.
type Outcome struct {
	Kind            OutcomeKind
	Message         string
	BookingID       int64
	BookingDateTime time.Time

	// Mutation is nil on rejection.
	Mutation *Mutation

	// Warnings collects tolerated data-integrity anomalies observed during
	// cancellation (missing linked records, counter already at zero).
	Warnings []string
}

// Mutation describes the writes a successful evaluation requires. The engine
// fills copies of the affected records; it never touches the snapshots it was
// given.
type Mutation struct {
	// NewBooking is set on the book path; its ID is assigned at persist time.
	NewBooking *Booking
	// UpdatedBooking is set on the cancel path.
	UpdatedBooking *Booking
	// UpdatedMember and UpdatedItem may each be nil on the cancel path when
	// the linked record is missing or its counter is already at the floor.
	UpdatedMember *Member
	UpdatedItem   *InventoryItem
}

func (o Outcome) Succeeded() bool {
	return o.Kind == BookSucceeded || o.Kind == CancelSucceeded
}
