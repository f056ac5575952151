package services

import "errors"

// Errors shared across services and the HTTP error mapping.
var (
	// Generic not-found, used when a more specific error adds nothing.
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business-rule errors
	ErrValidationFailed        = errors.New("validation failed")
	ErrNameRequired            = errors.New("name is required")
	ErrInvalidVisibility       = errors.New("invalid tournament visibility")
	ErrInvalidRole             = errors.New("invalid player role")
	ErrInvalidDisplayPref      = errors.New("invalid display preference")
	ErrInvalidFavoriteTeam     = errors.New("unknown favorite team slug")
	ErrInvalidAbility          = errors.New("ability must be between 1 and 10")
	ErrInvalidMatchStatus      = errors.New("invalid match status")
	ErrNegativeGoals           = errors.New("goals must not be negative")
	ErrDuplicateLineupPlayer   = errors.New("player listed on both teams of the lineup")
	ErrPlayerNotInTournament   = errors.New("player does not belong to the match tournament")
	ErrPlayerAlreadyLinked     = errors.New("player is already linked to a user")
	ErrUserAlreadyInTournament = errors.New("user already has a player in this tournament")
	ErrJoinRequestPending      = errors.New("a join request for this tournament is already pending")
	ErrTeamLimitReached        = errors.New("a match can have only two teams")
	ErrCodeExpired             = errors.New("code has expired")
	ErrCodeInvalid             = errors.New("code not recognized")

	// Authorization errors
	ErrNotTournamentMember = errors.New("requesting user is not a member of this tournament")
	ErrEditorRequired      = errors.New("operation requires the OWNER or ADMIN role")
	ErrOwnerRequired       = errors.New("operation requires the OWNER role")
	ErrForbiddenOperation  = errors.New("operation not allowed for the current user")

	// Entity-specific not-found errors, kept separate for clearer messages.
	ErrUserNotFound        = errors.New("user not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrTeamNotFound        = errors.New("team not found")
	ErrPlayerTeamNotFound  = errors.New("player-team record not found")
	ErrInviteNotFound      = errors.New("tournament invite not found")
	ErrJoinRequestNotFound = errors.New("join request not found")

	// Conflict errors
	ErrUserEmailConflict = errors.New("email address is already in use")
	ErrUserAuthConflict  = errors.New("auth subject is already registered")
)
