package models

import "time"

type TournamentVisibility string

const (
	VisibilityPublic  TournamentVisibility = "PUBLIC"
	VisibilityPrivate TournamentVisibility = "PRIVATE"
)

func (v TournamentVisibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// MembershipStatus is computed per requesting user when listing
// tournaments, it is never stored.
type MembershipStatus string

const (
	MembershipMember  MembershipStatus = "MEMBER"
	MembershipPending MembershipStatus = "PENDING"
)

type Tournament struct {
	ID         string               `json:"id" db:"id"`
	Name       string               `json:"name" db:"name"`
	Visibility TournamentVisibility `json:"visibility" db:"visibility"`
	FinishedAt *time.Time           `json:"finished_at,omitempty" db:"finished_at"`
	CreatedAt  time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at" db:"updated_at"`

	// Banner objects live in R2; the keys are internal and the public
	// URLs are populated by the service layer.
	ImageKey        *string `json:"-" db:"image_key"`
	ImageURL        *string `json:"image_url,omitempty" db:"-"`
	LeaderBannerKey *string `json:"-" db:"leader_banner_key"`
	LeaderBannerURL *string `json:"leader_banner_image_url,omitempty" db:"-"`
	ScorerBannerKey *string `json:"-" db:"scorer_banner_key"`
	ScorerBannerURL *string `json:"scorer_banner_image_url,omitempty" db:"-"`

	MembershipStatus MembershipStatus `json:"membership_status,omitempty" db:"-"`
	Players          []Player         `json:"players,omitempty" db:"-"`
	Matches          []Match          `json:"matches,omitempty" db:"-"`
}
