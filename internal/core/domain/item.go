package domain

import "time"

// InventoryItem is a finite-stock bookable resource. RemainingCount is the
// available stock and must stay >= 0. ExpirationDate is informational only.
type InventoryItem struct {
	ID             int64
	Title          string
	Description    string
	RemainingCount int
	ExpirationDate time.Time
}
