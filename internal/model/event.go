package model

import "time"

// Event is a single football match.  Logo URLs and description are optional
// and serialize as null when absent.
//
// Fields:
//   - Team1Name/Team2Name: the two sides of the match.
//   - Team1LogoURL/Team2LogoURL: optional crest images.
//   - Date: kick-off time.
//   - Location: stadium or city.
//   - CategoryID: required reference into categories.
type Event struct {
	ID           int64     `json:"id"`
	Team1Name    string    `json:"team1_name"`
	Team2Name    string    `json:"team2_name"`
	Team1LogoURL *string   `json:"team1_logo_url"`
	Team2LogoURL *string   `json:"team2_logo_url"`
	Description  *string   `json:"description"`
	Date         time.Time `json:"date"`
	Location     string    `json:"location"`
	CategoryID   int64     `json:"category_id"`
	CreatedAt    time.Time `json:"created_at"`
}
