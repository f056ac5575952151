package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/juangiadev/fulbo/models"
	"github.com/juangiadev/fulbo/repositories"
)

type CreatePlayerInput struct {
	Name     string            `json:"name"`
	Nickname *string           `json:"nickname"`
	Ability  *int              `json:"ability"`
	Role     models.PlayerRole `json:"role"`
}

// CreateFromUserInput adds an existing user as a player. Blank fields
// are seeded from the user's profile.
type CreateFromUserInput struct {
	UserID   string            `json:"user_id"`
	Name     *string           `json:"name"`
	Nickname *string           `json:"nickname"`
	Ability  *int              `json:"ability"`
	Role     models.PlayerRole `json:"role"`
}

type UpdatePlayerInput struct {
	Name              *string                   `json:"name"`
	Nickname          *string                   `json:"nickname"`
	ImageURL          *string                   `json:"image_url"`
	FavoriteTeamSlug  *string                   `json:"favorite_team_slug"`
	DisplayPreference *models.DisplayPreference `json:"display_preference"`
	Ability           *int                      `json:"ability"`
	Injury            *string                   `json:"injury"`
	Misses            *int                      `json:"misses"`
}

type PlayerService interface {
	// CreateGuest adds an unlinked player and returns the one-time
	// claim code in plain text.
	CreateGuest(ctx context.Context, authID, tournamentID string, input CreatePlayerInput) (*models.Player, string, error)
	// CreateFromUser adds an already-registered user as a linked player.
	CreateFromUser(ctx context.Context, authID, tournamentID string, input CreateFromUserInput) (*models.Player, error)
	GetByID(ctx context.Context, authID, tournamentID, playerID string) (*models.Player, error)
	ListByTournament(ctx context.Context, authID, tournamentID string) ([]*models.Player, error)
	Update(ctx context.Context, authID, tournamentID, playerID string, input UpdatePlayerInput) (*models.Player, error)
	UpdateRole(ctx context.Context, authID, tournamentID, playerID string, role models.PlayerRole) error
	Delete(ctx context.Context, authID, tournamentID, playerID string) error
	// LinkToUser binds an unlinked guest player to an existing user.
	LinkToUser(ctx context.Context, authID, tournamentID, playerID, userID string) (*models.Player, error)
	// RegenerateClaimCode replaces an unlinked player's claim code and
	// returns the new code in plain text.
	RegenerateClaimCode(ctx context.Context, authID, tournamentID, playerID string) (string, error)
	// GetClaimCodeMeta reports when an unlinked player's claim code
	// expires; a linked player has no code.
	GetClaimCodeMeta(ctx context.Context, authID, tournamentID, playerID string) (*time.Time, error)
	// Claim links the authenticated user to the guest player whose
	// claim code matches, searching across all tournaments.
	Claim(ctx context.Context, authID, code string) (*models.Player, error)
	// ClaimInTournament is Claim restricted to one tournament's codes.
	ClaimInTournament(ctx context.Context, authID, tournamentID, code string) (*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	userRepo   repositories.UserRepository
	txManager  TxManager
	clock      clockwork.Clock
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	userRepo repositories.UserRepository,
	txManager TxManager,
	clock clockwork.Clock,
) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		userRepo:   userRepo,
		txManager:  txManager,
		clock:      clock,
	}
}

func validateAbility(ability *int) error {
	if ability != nil && (*ability < 1 || *ability > 10) {
		return ErrInvalidAbility
	}
	return nil
}

func (s *playerService) CreateGuest(ctx context.Context, authID, tournamentID string, input CreatePlayerInput) (*models.Player, string, error) {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return nil, "", err
	}
	if err := requireEditor(actor); err != nil {
		return nil, "", err
	}

	if input.Name == "" {
		return nil, "", ErrNameRequired
	}
	if err := validateAbility(input.Ability); err != nil {
		return nil, "", err
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	switch role {
	case models.RoleUser:
	case models.RoleAdmin:
		// Only the owner grants the ADMIN role.
		if err := requireOwner(actor); err != nil {
			return nil, "", err
		}
	case models.RoleOwner:
		// Ownership is transferred, never created.
		return nil, "", ErrInvalidRole
	default:
		return nil, "", ErrInvalidRole
	}

	code, err := generateCode()
	if err != nil {
		return nil, "", err
	}
	codeHash := hashCode(code)
	expiresAt := s.clock.Now().Add(codeTTL)

	player := &models.Player{
		TournamentID:       tournamentID,
		Name:               input.Name,
		Nickname:           input.Nickname,
		DisplayPreference:  models.DisplayPreferenceImage,
		Role:               role,
		Ability:            input.Ability,
		ClaimCodeHash:      &codeHash,
		ClaimCodeExpiresAt: &expiresAt,
	}
	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		return nil, "", fmt.Errorf("failed to create guest player: %w", err)
	}
	return player, code, nil
}

// CreateFromUser adds an existing user as a linked player. Fields left
// blank in the input are seeded from the user's profile.
func (s *playerService) CreateFromUser(ctx context.Context, authID, tournamentID string, input CreateFromUserInput) (*models.Player, error) {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return nil, err
	}
	if err := requireEditor(actor); err != nil {
		return nil, err
	}
	if err := validateAbility(input.Ability); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	switch role {
	case models.RoleUser:
	case models.RoleAdmin:
		// Only the owner grants the ADMIN role.
		if err := requireOwner(actor); err != nil {
			return nil, err
		}
	case models.RoleOwner:
		// Ownership is transferred, never created.
		return nil, ErrInvalidRole
	default:
		return nil, ErrInvalidRole
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", input.UserID, err)
	}

	name := user.Name
	if input.Name != nil && *input.Name != "" {
		name = *input.Name
	}
	nickname := user.Nickname
	if input.Nickname != nil {
		nickname = input.Nickname
	}

	player := &models.Player{
		TournamentID:      tournamentID,
		UserID:            &user.ID,
		Name:              name,
		Nickname:          nickname,
		ImageURL:          user.ImageURL,
		FavoriteTeamSlug:  user.FavoriteTeamSlug,
		DisplayPreference: user.DisplayPreference,
		Role:              role,
		Ability:           input.Ability,
	}
	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerUserConflict) {
			return nil, ErrUserAlreadyInTournament
		}
		return nil, fmt.Errorf("failed to create player for user %s: %w", user.ID, err)
	}
	player.User = user
	return player, nil
}

func (s *playerService) getTournamentPlayer(ctx context.Context, tournamentID, playerID string) (*models.Player, error) {
	player, err := s.playerRepo.GetByTournamentAndID(ctx, tournamentID, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", playerID, err)
	}
	return player, nil
}

func (s *playerService) GetByID(ctx context.Context, authID, tournamentID, playerID string) (*models.Player, error) {
	if _, err := resolveActor(ctx, s.playerRepo, tournamentID, authID); err != nil {
		return nil, err
	}
	return s.getTournamentPlayer(ctx, tournamentID, playerID)
}

// ListByTournament returns every player to editors. Plain members see
// only their own card.
func (s *playerService) ListByTournament(ctx context.Context, authID, tournamentID string) ([]*models.Player, error) {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsEditor() {
		return []*models.Player{actor}, nil
	}

	players, err := s.playerRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for tournament %s: %w", tournamentID, err)
	}
	return players, nil
}

func (s *playerService) Update(ctx context.Context, authID, tournamentID, playerID string, input UpdatePlayerInput) (*models.Player, error) {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return nil, err
	}
	player, err := s.getTournamentPlayer(ctx, tournamentID, playerID)
	if err != nil {
		return nil, err
	}
	if !actor.CanEdit(player) {
		return nil, ErrForbiddenOperation
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrNameRequired
		}
		player.Name = *input.Name
	}
	if input.Nickname != nil {
		player.Nickname = input.Nickname
	}
	if input.ImageURL != nil {
		player.ImageURL = input.ImageURL
	}
	if input.FavoriteTeamSlug != nil {
		if *input.FavoriteTeamSlug != "" && !models.IsValidFavoriteTeamSlug(*input.FavoriteTeamSlug) {
			return nil, ErrInvalidFavoriteTeam
		}
		player.FavoriteTeamSlug = input.FavoriteTeamSlug
	}
	if input.DisplayPreference != nil {
		if !input.DisplayPreference.Valid() {
			return nil, ErrInvalidDisplayPref
		}
		player.DisplayPreference = *input.DisplayPreference
	}
	if input.Ability != nil {
		if err := validateAbility(input.Ability); err != nil {
			return nil, err
		}
		player.Ability = input.Ability
	}
	if input.Injury != nil {
		player.Injury = input.Injury
	}
	if input.Misses != nil {
		if *input.Misses < 0 {
			return nil, fmt.Errorf("%w: misses must not be negative", ErrValidationFailed)
		}
		player.Misses = *input.Misses
	}

	if err := s.playerRepo.Update(ctx, nil, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to update player %s: %w", playerID, err)
	}
	return player, nil
}

// UpdateRole changes a player's role. Only the owner may do this, and
// handing over the OWNER role demotes the current owner to USER in
// the same transaction.
func (s *playerService) UpdateRole(ctx context.Context, authID, tournamentID, playerID string, role models.PlayerRole) error {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return err
	}
	if err := requireOwner(actor); err != nil {
		return err
	}
	if !role.Valid() {
		return ErrInvalidRole
	}

	target, err := s.getTournamentPlayer(ctx, tournamentID, playerID)
	if err != nil {
		return err
	}
	if target.ID == actor.ID {
		return ErrForbiddenOperation
	}

	if role == models.RoleOwner {
		return s.txManager.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
			if err := s.playerRepo.UpdateRole(ctx, exec, target.ID, models.RoleOwner); err != nil {
				return fmt.Errorf("failed to promote player %s: %w", target.ID, err)
			}
			if err := s.playerRepo.UpdateRole(ctx, exec, actor.ID, models.RoleUser); err != nil {
				return fmt.Errorf("failed to demote previous owner %s: %w", actor.ID, err)
			}
			return nil
		})
	}

	if err := s.playerRepo.UpdateRole(ctx, nil, target.ID, role); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to update role of player %s: %w", target.ID, err)
	}
	return nil
}

func (s *playerService) Delete(ctx context.Context, authID, tournamentID, playerID string) error {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return err
	}
	if err := requireOwner(actor); err != nil {
		return err
	}

	target, err := s.getTournamentPlayer(ctx, tournamentID, playerID)
	if err != nil {
		return err
	}
	if target.Role == models.RoleOwner {
		return ErrForbiddenOperation
	}

	if err := s.playerRepo.Delete(ctx, target.ID); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to delete player %s: %w", target.ID, err)
	}
	return nil
}

func (s *playerService) RegenerateClaimCode(ctx context.Context, authID, tournamentID, playerID string) (string, error) {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return "", err
	}
	if err := requireEditor(actor); err != nil {
		return "", err
	}

	player, err := s.getTournamentPlayer(ctx, tournamentID, playerID)
	if err != nil {
		return "", err
	}
	if player.IsLinked() {
		return "", ErrPlayerAlreadyLinked
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}
	codeHash := hashCode(code)
	expiresAt := s.clock.Now().Add(codeTTL)
	player.ClaimCodeHash = &codeHash
	player.ClaimCodeExpiresAt = &expiresAt

	if err := s.playerRepo.Update(ctx, nil, player); err != nil {
		return "", fmt.Errorf("failed to store new claim code for player %s: %w", player.ID, err)
	}
	return code, nil
}

// LinkToUser binds a guest player to an existing user and retires the
// claim code.
func (s *playerService) LinkToUser(ctx context.Context, authID, tournamentID, playerID, userID string) (*models.Player, error) {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return nil, err
	}
	if err := requireEditor(actor); err != nil {
		return nil, err
	}

	player, err := s.getTournamentPlayer(ctx, tournamentID, playerID)
	if err != nil {
		return nil, err
	}
	if player.IsLinked() {
		return nil, ErrPlayerAlreadyLinked
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	if _, err := s.playerRepo.GetByTournamentAndUser(ctx, tournamentID, user.ID); err == nil {
		return nil, ErrUserAlreadyInTournament
	} else if !errors.Is(err, repositories.ErrPlayerNotFound) {
		return nil, fmt.Errorf("failed to check existing membership: %w", err)
	}

	player.UserID = &user.ID
	player.ClaimCodeHash = nil
	player.ClaimCodeExpiresAt = nil
	if err := s.playerRepo.Update(ctx, nil, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerUserConflict) {
			return nil, ErrUserAlreadyInTournament
		}
		return nil, fmt.Errorf("failed to link player %s to user %s: %w", player.ID, user.ID, err)
	}
	player.User = user
	return player, nil
}

func (s *playerService) GetClaimCodeMeta(ctx context.Context, authID, tournamentID, playerID string) (*time.Time, error) {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return nil, err
	}
	if err := requireEditor(actor); err != nil {
		return nil, err
	}

	player, err := s.getTournamentPlayer(ctx, tournamentID, playerID)
	if err != nil {
		return nil, err
	}
	if player.IsLinked() {
		return nil, nil
	}
	return player.ClaimCodeExpiresAt, nil
}

func (s *playerService) Claim(ctx context.Context, authID, code string) (*models.Player, error) {
	return s.claim(ctx, authID, nil, code)
}

func (s *playerService) ClaimInTournament(ctx context.Context, authID, tournamentID, code string) (*models.Player, error) {
	return s.claim(ctx, authID, &tournamentID, code)
}

// claim resolves a claim code to its player and links the caller's
// user to it. With a tournamentID only that tournament's codes match.
func (s *playerService) claim(ctx context.Context, authID string, tournamentID *string, code string) (*models.Player, error) {
	user, err := s.userRepo.GetByAuthID(ctx, authID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by auth id: %w", err)
	}

	player, err := s.playerRepo.GetByClaimCodeHash(ctx, tournamentID, hashCode(code))
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrCodeInvalid
		}
		return nil, fmt.Errorf("failed to look up claim code: %w", err)
	}

	if player.ClaimCodeExpiresAt == nil || s.clock.Now().After(*player.ClaimCodeExpiresAt) {
		return nil, ErrCodeExpired
	}
	if player.IsLinked() {
		return nil, ErrPlayerAlreadyLinked
	}
	if _, err := s.playerRepo.GetByTournamentAndUser(ctx, player.TournamentID, user.ID); err == nil {
		return nil, ErrUserAlreadyInTournament
	} else if !errors.Is(err, repositories.ErrPlayerNotFound) {
		return nil, fmt.Errorf("failed to check existing membership: %w", err)
	}

	player.UserID = &user.ID
	player.ClaimCodeHash = nil
	player.ClaimCodeExpiresAt = nil
	if err := s.playerRepo.Update(ctx, nil, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerUserConflict) {
			return nil, ErrUserAlreadyInTournament
		}
		return nil, fmt.Errorf("failed to link player %s to user %s: %w", player.ID, user.ID, err)
	}
	player.User = user
	return player, nil
}
