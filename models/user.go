package models

import "time"

// DisplayPreference controls whether a player card shows the personal
// image or the favorite team crest.
type DisplayPreference string

const (
	DisplayPreferenceImage        DisplayPreference = "IMAGE"
	DisplayPreferenceFavoriteTeam DisplayPreference = "FAVORITE_TEAM"
)

func (p DisplayPreference) Valid() bool {
	return p == DisplayPreferenceImage || p == DisplayPreferenceFavoriteTeam
}

// User mirrors an identity-provider account. Authentication itself
// happens upstream; AuthID is the provider subject.
type User struct {
	ID                string            `json:"id" db:"id"`
	AuthID            string            `json:"auth_id" db:"auth_id"`
	Email             string            `json:"email" db:"email"`
	Name              string            `json:"name" db:"name"`
	Nickname          *string           `json:"nickname,omitempty" db:"nickname"`
	ImageURL          *string           `json:"image_url,omitempty" db:"image_url"`
	FavoriteTeamSlug  *string           `json:"favorite_team_slug,omitempty" db:"favorite_team_slug"`
	DisplayPreference DisplayPreference `json:"display_preference" db:"display_preference"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
}
