package domain

import "time"

// Member can hold a capped number of simultaneously active bookings.
// BookingCount tracks the member's non-cancelled bookings and must stay >= 0.
type Member struct {
	ID           int64
	Name         string
	Surname      string
	BookingCount int
	DateJoined   time.Time
}
