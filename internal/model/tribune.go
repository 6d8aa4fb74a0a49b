package model

import "time"

// Tribune is a priced seating section of one event.  AvailableSeats is the
// inventory counter the order workflow decrements and refunds; it never
// drops below zero.
type Tribune struct {
	ID             int64     `json:"id"`
	EventID        int64     `json:"event_id"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	AvailableSeats int       `json:"available_seats"`
	CreatedAt      time.Time `json:"created_at"`
}
