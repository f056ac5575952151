package models

import "time"

type PlayerRole string

const (
	RoleOwner PlayerRole = "OWNER"
	RoleAdmin PlayerRole = "ADMIN"
	RoleUser  PlayerRole = "USER"
)

func (r PlayerRole) Valid() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleUser
}

// IsEditor reports whether the role may manage tournament resources
// (matches, teams, lineups, guests, invites).
func (r PlayerRole) IsEditor() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Player is a tournament member. A player without a UserID is a guest
// that can later be claimed through its claim code.
type Player struct {
	ID                 string            `json:"id" db:"id"`
	UserID             *string           `json:"user_id,omitempty" db:"user_id"`
	TournamentID       string            `json:"tournament_id" db:"tournament_id"`
	Name               string            `json:"name" db:"name"`
	Nickname           *string           `json:"nickname,omitempty" db:"nickname"`
	ImageURL           *string           `json:"image_url,omitempty" db:"image_url"`
	FavoriteTeamSlug   *string           `json:"favorite_team_slug,omitempty" db:"favorite_team_slug"`
	DisplayPreference  DisplayPreference `json:"display_preference" db:"display_preference"`
	Role               PlayerRole        `json:"role" db:"role"`
	Ability            *int              `json:"ability,omitempty" db:"ability"`
	Injury             *string           `json:"injury,omitempty" db:"injury"`
	Misses             int               `json:"misses" db:"misses"`
	ClaimCodeHash      *string           `json:"-" db:"claim_code_hash"`
	ClaimCodeExpiresAt *time.Time        `json:"-" db:"claim_code_expires_at"`
	CreatedAt          time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at" db:"updated_at"`

	User *User `json:"user,omitempty" db:"-"`
}

// DisplayName prefers the nickname over the full name.
func (p *Player) DisplayName() string {
	if p.Nickname != nil && *p.Nickname != "" {
		return *p.Nickname
	}
	return p.Name
}

// IsLinked reports whether the player is bound to a user account.
func (p *Player) IsLinked() bool {
	return p.UserID != nil
}

// CanEdit reports whether the actor may modify the target player:
// players always edit themselves, owners edit everyone, admins edit
// plain USER players only.
func (p *Player) CanEdit(target *Player) bool {
	if p.ID == target.ID {
		return true
	}
	if p.Role == RoleOwner {
		return true
	}
	return p.Role == RoleAdmin && target.Role == RoleUser
}
