package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/juangiadev/fulbo/models"
	"github.com/juangiadev/fulbo/repositories"
)

type CreatePlayerTeamInput struct {
	PlayerID string  `json:"player_id"`
	Goals    int     `json:"goals"`
	Injury   *string `json:"injury"`
}

type UpdatePlayerTeamInput struct {
	Goals  *int    `json:"goals"`
	Injury *string `json:"injury"`
}

// PlayerTeamService manages single roster rows, mainly for injury
// notes and corrections after a lineup has been saved.
type PlayerTeamService interface {
	ListByTeam(ctx context.Context, authID, tournamentID, matchID, teamID string) ([]*models.PlayerTeam, error)
	// Create adds one player to a team. A player joins at most one
	// team per match.
	Create(ctx context.Context, authID, tournamentID, matchID, teamID string, input CreatePlayerTeamInput) (*models.PlayerTeam, error)
	Update(ctx context.Context, authID, tournamentID, matchID, playerTeamID string, input UpdatePlayerTeamInput) (*models.PlayerTeam, error)
	Delete(ctx context.Context, authID, tournamentID, matchID, playerTeamID string) error
}

type playerTeamService struct {
	playerTeamRepo repositories.PlayerTeamRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	playerRepo     repositories.PlayerRepository
}

func NewPlayerTeamService(
	playerTeamRepo repositories.PlayerTeamRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
) PlayerTeamService {
	return &playerTeamService{
		playerTeamRepo: playerTeamRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		playerRepo:     playerRepo,
	}
}

// checkMatchScope verifies the match belongs to the tournament.
func (s *playerTeamService) checkMatchScope(ctx context.Context, tournamentID, matchID string) error {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to get match %s: %w", matchID, err)
	}
	if match.TournamentID != tournamentID {
		return ErrMatchNotFound
	}
	return nil
}

// getMatchRow loads a roster row and verifies it belongs to the match
// and tournament through its team.
func (s *playerTeamService) getMatchRow(ctx context.Context, tournamentID, matchID, playerTeamID string) (*models.PlayerTeam, error) {
	row, err := s.playerTeamRepo.GetByID(ctx, playerTeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerTeamNotFound) {
			return nil, ErrPlayerTeamNotFound
		}
		return nil, fmt.Errorf("failed to get roster row %s: %w", playerTeamID, err)
	}

	team, err := s.teamRepo.GetByID(ctx, row.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %s: %w", row.TeamID, err)
	}
	if team.MatchID != matchID {
		return nil, ErrPlayerTeamNotFound
	}
	if err := s.checkMatchScope(ctx, tournamentID, matchID); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *playerTeamService) ListByTeam(ctx context.Context, authID, tournamentID, matchID, teamID string) ([]*models.PlayerTeam, error) {
	if _, err := resolveActor(ctx, s.playerRepo, tournamentID, authID); err != nil {
		return nil, err
	}
	if err := s.checkMatchScope(ctx, tournamentID, matchID); err != nil {
		return nil, err
	}

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

	rows, err := s.playerTeamRepo.ListByTeamWithPlayers(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster for team %s: %w", team.ID, err)
	}
	return rows, nil
}

func (s *playerTeamService) Create(ctx context.Context, authID, tournamentID, matchID, teamID string, input CreatePlayerTeamInput) (*models.PlayerTeam, error) {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return nil, err
	}
	if err := requireEditor(actor); err != nil {
		return nil, err
	}
	if err := s.checkMatchScope(ctx, tournamentID, matchID); err != nil {
		return nil, err
	}

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

	if input.Goals < 0 {
		return nil, ErrNegativeGoals
	}
	if _, err := s.playerRepo.GetByTournamentAndID(ctx, tournamentID, input.PlayerID); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotInTournament
		}
		return nil, fmt.Errorf("failed to get player %s: %w", input.PlayerID, err)
	}

	// One team per match per player.
	if _, err := s.playerTeamRepo.GetByMatchAndPlayer(ctx, matchID, input.PlayerID); err == nil {
		return nil, ErrDuplicateLineupPlayer
	} else if !errors.Is(err, repositories.ErrPlayerTeamNotFound) {
		return nil, fmt.Errorf("failed to check existing assignment for player %s: %w", input.PlayerID, err)
	}

	row := &models.PlayerTeam{
		PlayerID: input.PlayerID,
		TeamID:   team.ID,
		Goals:    input.Goals,
		Injury:   input.Injury,
	}
	if err := s.playerTeamRepo.Create(ctx, nil, row); err != nil {
		if errors.Is(err, repositories.ErrPlayerTeamConflict) {
			return nil, ErrDuplicateLineupPlayer
		}
		return nil, fmt.Errorf("failed to create roster row for player %s: %w", input.PlayerID, err)
	}
	return row, nil
}

func (s *playerTeamService) Update(ctx context.Context, authID, tournamentID, matchID, playerTeamID string, input UpdatePlayerTeamInput) (*models.PlayerTeam, error) {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return nil, err
	}
	if err := requireEditor(actor); err != nil {
		return nil, err
	}

	row, err := s.getMatchRow(ctx, tournamentID, matchID, playerTeamID)
	if err != nil {
		return nil, err
	}

	if input.Goals != nil {
		if *input.Goals < 0 {
			return nil, ErrNegativeGoals
		}
		row.Goals = *input.Goals
	}
	if input.Injury != nil {
		row.Injury = input.Injury
	}

	if err := s.playerTeamRepo.Update(ctx, nil, row); err != nil {
		if errors.Is(err, repositories.ErrPlayerTeamNotFound) {
			return nil, ErrPlayerTeamNotFound
		}
		return nil, fmt.Errorf("failed to update roster row %s: %w", playerTeamID, err)
	}
	return row, nil
}

func (s *playerTeamService) Delete(ctx context.Context, authID, tournamentID, matchID, playerTeamID string) error {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return err
	}
	if err := requireEditor(actor); err != nil {
		return err
	}

	row, err := s.getMatchRow(ctx, tournamentID, matchID, playerTeamID)
	if err != nil {
		return err
	}

	if err := s.playerTeamRepo.Delete(ctx, nil, row.ID); err != nil {
		if errors.Is(err, repositories.ErrPlayerTeamNotFound) {
			return ErrPlayerTeamNotFound
		}
		return fmt.Errorf("failed to delete roster row %s: %w", row.ID, err)
	}
	return nil
}
