package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/juangiadev/fulbo/models"
	"github.com/juangiadev/fulbo/repositories"
)

// AuthIdentity carries the token claims of the authenticated subject.
type AuthIdentity struct {
	Sub      string
	Email    string
	Name     string
	Nickname *string
	Picture  *string
}

type UpdateUserInput struct {
	Name              *string                   `json:"name"`
	Nickname          *string                   `json:"nickname"`
	ImageURL          *string                   `json:"image_url"`
	FavoriteTeamSlug  *string                   `json:"favorite_team_slug"`
	DisplayPreference *models.DisplayPreference `json:"display_preference"`
}

type UserService interface {
	// SyncMe returns the local account for the authenticated subject,
	// creating it from the token claims on first login. Profile gaps
	// are filled from the management API when one is configured.
	SyncMe(ctx context.Context, identity AuthIdentity) (*models.User, error)
	GetMe(ctx context.Context, authID string) (*models.User, error)
	UpdateMe(ctx context.Context, authID string, input UpdateUserInput) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

type userService struct {
	userRepo   repositories.UserRepository
	management ManagementClient
	logger     *slog.Logger
}

// NewUserService builds a user service. management may be nil, in
// which case accounts are created from token claims only.
func NewUserService(userRepo repositories.UserRepository, management ManagementClient, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		userRepo:   userRepo,
		management: management,
		logger:     logger,
	}
}

func (s *userService) SyncMe(ctx context.Context, identity AuthIdentity) (*models.User, error) {
	user, err := s.userRepo.GetByAuthID(ctx, identity.Sub)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to get user by auth id: %w", err)
	}

	user = &models.User{
		AuthID:            identity.Sub,
		Email:             identity.Email,
		Name:              identity.Name,
		Nickname:          identity.Nickname,
		ImageURL:          identity.Picture,
		DisplayPreference: models.DisplayPreferenceImage,
	}

	if s.management != nil {
		profile, mgmtErr := s.management.GetUser(ctx, identity.Sub)
		if mgmtErr != nil {
			// The token claims are enough to create the account.
			s.logger.WarnContext(ctx, "failed to enrich user from management api",
				slog.String("auth_id", identity.Sub),
				slog.Any("error", mgmtErr),
			)
		} else {
			if user.Email == "" {
				user.Email = profile.Email
			}
			if user.Name == "" {
				user.Name = profile.Name
			}
			if user.Nickname == nil {
				user.Nickname = profile.Nickname
			}
			if user.ImageURL == nil {
				user.ImageURL = profile.Picture
			}
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Two first-login requests can race. The loser reads the row
		// the winner created.
		if errors.Is(err, repositories.ErrUserAuthIDConflict) {
			winner, readErr := s.GetMe(ctx, identity.Sub)
			if readErr != nil {
				return nil, ErrUserAuthConflict
			}
			return winner, nil
		}
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrUserEmailConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *userService) GetMe(ctx context.Context, authID string) (*models.User, error) {
	user, err := s.userRepo.GetByAuthID(ctx, authID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by auth id: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateMe(ctx context.Context, authID string, input UpdateUserInput) (*models.User, error) {
	user, err := s.GetMe(ctx, authID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrNameRequired
		}
		user.Name = *input.Name
	}
	if input.Nickname != nil {
		user.Nickname = input.Nickname
	}
	if input.ImageURL != nil {
		user.ImageURL = input.ImageURL
	}
	if input.FavoriteTeamSlug != nil {
		if *input.FavoriteTeamSlug != "" && !models.IsValidFavoriteTeamSlug(*input.FavoriteTeamSlug) {
			return nil, ErrInvalidFavoriteTeam
		}
		user.FavoriteTeamSlug = input.FavoriteTeamSlug
	}
	if input.DisplayPreference != nil {
		if !input.DisplayPreference.Valid() {
			return nil, ErrInvalidDisplayPref
		}
		user.DisplayPreference = *input.DisplayPreference
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrUserEmailConflict
		}
		return nil, fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
