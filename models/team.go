package models

import "time"

type TeamResult string

const (
	TeamResultWinner  TeamResult = "WINNER"
	TeamResultLoser   TeamResult = "LOSER"
	TeamResultDraw    TeamResult = "DRAW"
	TeamResultPending TeamResult = "PENDING"
)

// Team slots. A match has at most two teams, identified by a stable
// slot rather than by display name so that renaming a team never
// breaks lineup upserts.
const (
	TeamSlotA = 1
	TeamSlotB = 2
)

// DefaultTeamName is used when a lineup creates a team without an
// explicit name.
func DefaultTeamName(slot int) string {
	if slot == TeamSlotB {
		return "Team B"
	}
	return "Team A"
}

type Team struct {
	ID        string     `json:"id" db:"id"`
	MatchID   string     `json:"match_id" db:"match_id"`
	Slot      int        `json:"slot" db:"slot"`
	Name      string     `json:"name" db:"name"`
	Color     *string    `json:"color,omitempty" db:"color"`
	ImageURL  *string    `json:"image_url,omitempty" db:"image_url"`
	Result    TeamResult `json:"result" db:"result"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`

	PlayerTeams []PlayerTeam `json:"player_teams,omitempty" db:"-"`
}
