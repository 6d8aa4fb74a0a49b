package model

import "time"

// Category groups events (league, cup, friendly ...).  Name is unique.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
