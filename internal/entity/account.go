package entity

import "time"

// MinPasswordLength is the shortest password the sign-up form accepts.
const MinPasswordLength = 6

// Account is the locally stored login record. The password is kept as entered.
type Account struct {
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

// Document is the most recently processed upload and its generated summary.
type Document struct {
	Name     string `json:"name"`
	Text     string `json:"text"`
	Summary  string `json:"summary"`
	Identity string `json:"identity,omitempty"`
}

// LeaderboardEntry is one row of the storage-scoped ranking.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	Name          string `json:"name"`
	XP            int    `json:"xp"`
	IsCurrentUser bool   `json:"isCurrentUser"`
}
