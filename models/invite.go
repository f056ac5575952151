package models

import "time"

// TournamentInvite holds the single active join code of a tournament.
// Only the SHA-256 hash of the code is stored; regeneration replaces
// the previous code.
type TournamentInvite struct {
	ID           string    `json:"id" db:"id"`
	TournamentID string    `json:"tournament_id" db:"tournament_id"`
	CodeHash     string    `json:"-" db:"code_hash"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
