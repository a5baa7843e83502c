package domain

import "time"

// JournalEntry is the local record of one payment submission and the
// latest status derived for it. The journal is display data only: status
// decisions always come from the processor's records, never from here.
type JournalEntry struct {
	ID            string
	OrderID       string
	Amount        float64
	Currency      string
	CustomerName  string
	CustomerPhone string
	Status        UIStatus
	Message       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
