package domain

import "time"

// Booking links one member to one inventory item at a point in time.
// It starts active and may be cancelled exactly once; there is no un-cancel.
type Booking struct {
	ID              int64
	MemberID        int64
	InventoryItemID int64
	BookingDateTime time.Time
	IsCancelled     bool
}
