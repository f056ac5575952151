package models

import "time"

type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "PENDING"
	MatchStatusFinished MatchStatus = "FINISHED"
)

func (s MatchStatus) Valid() bool {
	return s == MatchStatusPending || s == MatchStatusFinished
}

type Match struct {
	ID           string      `json:"id" db:"id"`
	TournamentID string      `json:"tournament_id" db:"tournament_id"`
	PlaceName    string      `json:"place_name" db:"place_name"`
	PlaceURL     *string     `json:"place_url,omitempty" db:"place_url"`
	KickoffAt    time.Time   `json:"kickoff_at" db:"kickoff_at"`
	Stage        string      `json:"stage" db:"stage"`
	Status       MatchStatus `json:"status" db:"status"`
	MVPPlayerID  *string     `json:"mvp_player_id,omitempty" db:"mvp_player_id"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`

	Teams []Team `json:"teams,omitempty" db:"-"`
}
