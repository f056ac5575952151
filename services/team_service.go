package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/juangiadev/fulbo/models"
	"github.com/juangiadev/fulbo/repositories"
)

type CreateTeamInput struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

type UpdateTeamInput struct {
	Name     *string `json:"name"`
	Color    *string `json:"color"`
	ImageURL *string `json:"image_url"`
}

// TeamService covers direct team management. Results stay owned by the
// lineup reconciler.
type TeamService interface {
	ListByMatch(ctx context.Context, authID, tournamentID, matchID string) ([]*models.Team, error)
	// Create adds a team on the first free slot. A match holds at most
	// two teams.
	Create(ctx context.Context, authID, tournamentID, matchID string, input CreateTeamInput) (*models.Team, error)
	Update(ctx context.Context, authID, tournamentID, matchID, teamID string, input UpdateTeamInput) (*models.Team, error)
	Delete(ctx context.Context, authID, tournamentID, matchID, teamID string) error
}

type teamService struct {
	teamRepo   repositories.TeamRepository
	matchRepo  repositories.MatchRepository
	playerRepo repositories.PlayerRepository
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
) TeamService {
	return &teamService{
		teamRepo:   teamRepo,
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
	}
}

func (s *teamService) getTournamentMatch(ctx context.Context, tournamentID, matchID string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}
	if match.TournamentID != tournamentID {
		return nil, ErrMatchNotFound
	}
	return match, nil
}

func (s *teamService) getMatchTeam(ctx context.Context, matchID, teamID string) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %s: %w", teamID, err)
	}
	if team.MatchID != matchID {
		return nil, ErrTeamNotFound
	}
	return team, nil
}

func (s *teamService) ListByMatch(ctx context.Context, authID, tournamentID, matchID string) ([]*models.Team, error) {
	if _, err := resolveActor(ctx, s.playerRepo, tournamentID, authID); err != nil {
		return nil, err
	}
	if _, err := s.getTournamentMatch(ctx, tournamentID, matchID); err != nil {
		return nil, err
	}

	teams, err := s.teamRepo.ListByMatch(ctx, nil, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for match %s: %w", matchID, err)
	}
	return teams, nil
}

func (s *teamService) Create(ctx context.Context, authID, tournamentID, matchID string, input CreateTeamInput) (*models.Team, error) {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return nil, err
	}
	if err := requireEditor(actor); err != nil {
		return nil, err
	}
	if _, err := s.getTournamentMatch(ctx, tournamentID, matchID); err != nil {
		return nil, err
	}

	count, err := s.teamRepo.CountByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to count teams for match %s: %w", matchID, err)
	}
	if count >= 2 {
		return nil, ErrTeamLimitReached
	}

	// Take the first free slot so the new team lines up with the
	// reconciler's slot identity.
	slot := models.TeamSlotA
	existing, err := s.teamRepo.ListByMatch(ctx, nil, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for match %s: %w", matchID, err)
	}
	for _, t := range existing {
		if t.Slot == models.TeamSlotA {
			slot = models.TeamSlotB
		}
	}

	name := input.Name
	if name == "" {
		name = models.DefaultTeamName(slot)
	}

	team := &models.Team{
		MatchID: matchID,
		Slot:    slot,
		Name:    name,
		Color:   input.Color,
		Result:  models.TeamResultPending,
	}
	if err := s.teamRepo.Create(ctx, nil, team); err != nil {
		if errors.Is(err, repositories.ErrTeamSlotConflict) {
			return nil, ErrTeamLimitReached
		}
		return nil, fmt.Errorf("failed to create team for match %s: %w", matchID, err)
	}
	return team, nil
}

func (s *teamService) Update(ctx context.Context, authID, tournamentID, matchID, teamID string, input UpdateTeamInput) (*models.Team, error) {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return nil, err
	}
	if err := requireEditor(actor); err != nil {
		return nil, err
	}

	match, err := s.getTournamentMatch(ctx, tournamentID, matchID)
	if err != nil {
		return nil, err
	}
	team, err := s.getMatchTeam(ctx, match.ID, teamID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrNameRequired
		}
		team.Name = *input.Name
	}
	if input.Color != nil {
		team.Color = input.Color
	}
	if input.ImageURL != nil {
		team.ImageURL = input.ImageURL
	}

	if err := s.teamRepo.Update(ctx, nil, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to update team %s: %w", teamID, err)
	}
	return team, nil
}

// Delete removes a team and, through the cascade, its roster rows.
func (s *teamService) Delete(ctx context.Context, authID, tournamentID, matchID, teamID string) error {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return err
	}
	if err := requireEditor(actor); err != nil {
		return err
	}

	match, err := s.getTournamentMatch(ctx, tournamentID, matchID)
	if err != nil {
		return err
	}
	team, err := s.getMatchTeam(ctx, match.ID, teamID)
	if err != nil {
		return err
	}

	if err := s.teamRepo.Delete(ctx, team.ID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to delete team %s: %w", team.ID, err)
	}
	return nil
}
