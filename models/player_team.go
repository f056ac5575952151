package models

import "time"

// PlayerTeam is the roster join row: one player on one team of one
// match, with the goals they scored there. Rows are rewritten
// wholesale by the lineup reconciler.
type PlayerTeam struct {
	ID        string    `json:"id" db:"id"`
	PlayerID  string    `json:"player_id" db:"player_id"`
	TeamID    string    `json:"team_id" db:"team_id"`
	Goals     int       `json:"goals" db:"goals"`
	Injury    *string   `json:"injury,omitempty" db:"injury"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Player *Player `json:"player,omitempty" db:"-"`
	Team   *Team   `json:"team,omitempty" db:"-"`
}
