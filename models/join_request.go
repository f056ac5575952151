package models

import "time"

type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "PENDING"
	JoinRequestApproved JoinRequestStatus = "APPROVED"
	JoinRequestRejected JoinRequestStatus = "REJECTED"
)

// TournamentJoinRequest is a user's pending request to enter a
// tournament, resolved by linking the user to an unclaimed player.
type TournamentJoinRequest struct {
	ID           string            `json:"id" db:"id"`
	TournamentID string            `json:"tournament_id" db:"tournament_id"`
	UserID       string            `json:"user_id" db:"user_id"`
	Status       JoinRequestStatus `json:"status" db:"status"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" db:"updated_at"`

	User       *User       `json:"user,omitempty" db:"-"`
	Tournament *Tournament `json:"tournament,omitempty" db:"-"`
}
