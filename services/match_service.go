package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/juangiadev/fulbo/models"
	"github.com/juangiadev/fulbo/repositories"
)

type CreateMatchInput struct {
	PlaceName string    `json:"place_name"`
	PlaceURL  *string   `json:"place_url"`
	KickoffAt time.Time `json:"kickoff_at"`
	Stage     string    `json:"stage"`
}

type UpdateMatchInput struct {
	PlaceName   *string             `json:"place_name"`
	PlaceURL    *string             `json:"place_url"`
	KickoffAt   *time.Time          `json:"kickoff_at"`
	Stage       *string             `json:"stage"`
	Status      *models.MatchStatus `json:"status"`
	MVPPlayerID *string             `json:"mvp_player_id"`
}

// LineupEntry is one desired roster slot. Field names follow the
// public API contract.
type LineupEntry struct {
	PlayerID string `json:"playerId"`
	Goals    int    `json:"goals"`
}

// UpsertLineupInput is the desired state of a match's two teams. The
// reconciler diffs it against the persisted roster.
type UpsertLineupInput struct {
	TeamAName  *string       `json:"teamAName"`
	TeamBName  *string       `json:"teamBName"`
	TeamAColor *string       `json:"teamAColor"`
	TeamBColor *string       `json:"teamBColor"`
	TeamA      []LineupEntry `json:"teamA"`
	TeamB      []LineupEntry `json:"teamB"`
}

type MatchService interface {
	Create(ctx context.Context, authID, tournamentID string, input CreateMatchInput) (*models.Match, error)
	GetByID(ctx context.Context, authID, tournamentID, matchID string) (*models.Match, error)
	ListByTournament(ctx context.Context, authID, tournamentID string) ([]*models.Match, error)
	Update(ctx context.Context, authID, tournamentID, matchID string, input UpdateMatchInput) (*models.Match, error)
	Delete(ctx context.Context, authID, tournamentID, matchID string) error
	UpsertLineup(ctx context.Context, authID, tournamentID, matchID string, input UpsertLineupInput) error
}

type matchService struct {
	matchRepo      repositories.MatchRepository
	teamRepo       repositories.TeamRepository
	playerRepo     repositories.PlayerRepository
	playerTeamRepo repositories.PlayerTeamRepository
	txManager      TxManager
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	playerTeamRepo repositories.PlayerTeamRepository,
	txManager TxManager,
) MatchService {
	return &matchService{
		matchRepo:      matchRepo,
		teamRepo:       teamRepo,
		playerRepo:     playerRepo,
		playerTeamRepo: playerTeamRepo,
		txManager:      txManager,
	}
}

// getTournamentMatch loads a match and checks it belongs to the
// tournament named in the URL, so a match id cannot be reached through
// another tournament's path.
func (s *matchService) getTournamentMatch(ctx context.Context, tournamentID, matchID string) (*models.Match, error) {
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

func (s *matchService) Create(ctx context.Context, authID, tournamentID string, input CreateMatchInput) (*models.Match, error) {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return nil, err
	}
	if err := requireEditor(actor); err != nil {
		return nil, err
	}

	if input.PlaceName == "" {
		return nil, fmt.Errorf("%w: place name is required", ErrValidationFailed)
	}
	if input.KickoffAt.IsZero() {
		return nil, fmt.Errorf("%w: kickoff time is required", ErrValidationFailed)
	}

	match := &models.Match{
		TournamentID: tournamentID,
		PlaceName:    input.PlaceName,
		PlaceURL:     input.PlaceURL,
		KickoffAt:    input.KickoffAt,
		Stage:        input.Stage,
		Status:       models.MatchStatusPending,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, authID, tournamentID, matchID string) (*models.Match, error) {
	if _, err := resolveActor(ctx, s.playerRepo, tournamentID, authID); err != nil {
		return nil, err
	}

	match, err := s.getTournamentMatch(ctx, tournamentID, matchID)
	if err != nil {
		return nil, err
	}

	teams, err := s.teamRepo.ListByMatch(ctx, nil, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams for match %s: %w", matchID, err)
	}
	match.Teams = make([]models.Team, 0, len(teams))
	for _, team := range teams {
		rows, err := s.playerTeamRepo.ListByTeamWithPlayers(ctx, team.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load roster for team %s: %w", team.ID, err)
		}
		team.PlayerTeams = make([]models.PlayerTeam, 0, len(rows))
		for _, row := range rows {
			team.PlayerTeams = append(team.PlayerTeams, *row)
		}
		match.Teams = append(match.Teams, *team)
	}
	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, authID, tournamentID string) ([]*models.Match, error) {
	if _, err := resolveActor(ctx, s.playerRepo, tournamentID, authID); err != nil {
		return nil, err
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %s: %w", tournamentID, err)
	}

	matchIDs := make([]string, 0, len(matches))
	byID := make(map[string]*models.Match, len(matches))
	for _, m := range matches {
		matchIDs = append(matchIDs, m.ID)
		m.Teams = []models.Team{}
		byID[m.ID] = m
	}
	teams, err := s.teamRepo.ListByMatchIDs(ctx, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams for tournament %s: %w", tournamentID, err)
	}
	for _, team := range teams {
		if m, ok := byID[team.MatchID]; ok {
			m.Teams = append(m.Teams, *team)
		}
	}
	return matches, nil
}

func (s *matchService) Update(ctx context.Context, authID, tournamentID, matchID string, input UpdateMatchInput) (*models.Match, error) {
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

	if input.PlaceName != nil {
		match.PlaceName = *input.PlaceName
	}
	if input.PlaceURL != nil {
		match.PlaceURL = input.PlaceURL
	}
	if input.KickoffAt != nil {
		match.KickoffAt = *input.KickoffAt
	}
	if input.Stage != nil {
		match.Stage = *input.Stage
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidMatchStatus
		}
		match.Status = *input.Status
	}
	if input.MVPPlayerID != nil {
		if *input.MVPPlayerID == "" {
			match.MVPPlayerID = nil
		} else {
			if _, err := s.playerRepo.GetByTournamentAndID(ctx, tournamentID, *input.MVPPlayerID); err != nil {
				if errors.Is(err, repositories.ErrPlayerNotFound) {
					return nil, ErrPlayerNotInTournament
				}
				return nil, fmt.Errorf("failed to verify mvp player: %w", err)
			}
			match.MVPPlayerID = input.MVPPlayerID
		}
	}

	if err := s.matchRepo.Update(ctx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to update match %s: %w", matchID, err)
	}
	return match, nil
}

func (s *matchService) Delete(ctx context.Context, authID, tournamentID, matchID string) error {
	actor, err := resolveActor(ctx, s.playerRepo, tournamentID, authID)
	if err != nil {
		return err
	}
	if err := requireOwner(actor); err != nil {
		return err
	}

	if _, err := s.getTournamentMatch(ctx, tournamentID, matchID); err != nil {
		return err
	}
	if err := s.matchRepo.Delete(ctx, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to delete match %s: %w", matchID, err)
	}
	return nil
}

// UpsertLineup reconciles the match's two-team roster against the
// desired state. Validation runs before any write; the team upserts
// and the roster diff for both teams commit as one transaction.
func (s *matchService) UpsertLineup(ctx context.Context, authID, tournamentID, matchID string, input UpsertLineupInput) error {
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

	if err := s.validateLineup(ctx, match.TournamentID, input); err != nil {
		return err
	}

	resultA, resultB := lineupResults(input.TeamA, input.TeamB)

	return s.txManager.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		existingTeams, err := s.teamRepo.ListByMatch(ctx, exec, match.ID)
		if err != nil {
			return fmt.Errorf("failed to list teams for match %s: %w", match.ID, err)
		}
		bySlot := make(map[int]*models.Team, len(existingTeams))
		for _, t := range existingTeams {
			bySlot[t.Slot] = t
		}

		teamA, err := s.upsertTeam(ctx, exec, bySlot[models.TeamSlotA], match.ID, models.TeamSlotA, input.TeamAName, input.TeamAColor, resultA)
		if err != nil {
			return err
		}
		teamB, err := s.upsertTeam(ctx, exec, bySlot[models.TeamSlotB], match.ID, models.TeamSlotB, input.TeamBName, input.TeamBColor, resultB)
		if err != nil {
			return err
		}

		if err := s.syncTeamRoster(ctx, exec, teamA.ID, input.TeamA); err != nil {
			return err
		}
		return s.syncTeamRoster(ctx, exec, teamB.ID, input.TeamB)
	})
}

// validateLineup rejects duplicate players and players outside the
// match's tournament before any write happens.
func (s *matchService) validateLineup(ctx context.Context, tournamentID string, input UpsertLineupInput) error {
	seen := make(map[string]struct{}, len(input.TeamA)+len(input.TeamB))
	ids := make([]string, 0, len(input.TeamA)+len(input.TeamB))
	for _, entry := range append(append([]LineupEntry{}, input.TeamA...), input.TeamB...) {
		if entry.Goals < 0 {
			return ErrNegativeGoals
		}
		if _, dup := seen[entry.PlayerID]; dup {
			return ErrDuplicateLineupPlayer
		}
		seen[entry.PlayerID] = struct{}{}
		ids = append(ids, entry.PlayerID)
	}
	if len(ids) == 0 {
		return nil
	}

	players, err := s.playerRepo.ListByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load lineup players: %w", err)
	}
	found := make(map[string]*models.Player, len(players))
	for _, p := range players {
		found[p.ID] = p
	}
	for _, id := range ids {
		p, ok := found[id]
		if !ok {
			return fmt.Errorf("%w: player %s", ErrPlayerNotFound, id)
		}
		if p.TournamentID != tournamentID {
			return fmt.Errorf("%w: player %s", ErrPlayerNotInTournament, id)
		}
	}
	return nil
}

// lineupResults computes both teams' results from the desired goal
// sums. Two empty lists mean the match has not been played yet.
func lineupResults(teamA, teamB []LineupEntry) (models.TeamResult, models.TeamResult) {
	if len(teamA) == 0 && len(teamB) == 0 {
		return models.TeamResultPending, models.TeamResultPending
	}
	goalsA, goalsB := 0, 0
	for _, e := range teamA {
		goalsA += e.Goals
	}
	for _, e := range teamB {
		goalsB += e.Goals
	}
	switch {
	case goalsA == goalsB:
		return models.TeamResultDraw, models.TeamResultDraw
	case goalsA > goalsB:
		return models.TeamResultWinner, models.TeamResultLoser
	default:
		return models.TeamResultLoser, models.TeamResultWinner
	}
}

// upsertTeam finds the team occupying the slot or creates it, then
// applies the optional name and color and the computed result.
func (s *matchService) upsertTeam(
	ctx context.Context,
	exec repositories.SQLExecutor,
	existing *models.Team,
	matchID string,
	slot int,
	name, color *string,
	result models.TeamResult,
) (*models.Team, error) {
	if existing == nil {
		team := &models.Team{
			MatchID: matchID,
			Slot:    slot,
			Name:    models.DefaultTeamName(slot),
			Color:   color,
			Result:  result,
		}
		if name != nil && *name != "" {
			team.Name = *name
		}
		if err := s.teamRepo.Create(ctx, exec, team); err != nil {
			return nil, fmt.Errorf("failed to create team slot %d for match %s: %w", slot, matchID, err)
		}
		return team, nil
	}

	if name != nil && *name != "" {
		existing.Name = *name
	}
	if color != nil {
		existing.Color = color
	}
	existing.Result = result
	if err := s.teamRepo.Update(ctx, exec, existing); err != nil {
		return nil, fmt.Errorf("failed to update team %s: %w", existing.ID, err)
	}
	return existing, nil
}

type rosterUpdate struct {
	row   *models.PlayerTeam
	goals int
}

type rosterDiff struct {
	toCreate []LineupEntry
	toUpdate []rosterUpdate
	toDelete []*models.PlayerTeam
}

// diffRoster compares the persisted roster of one team against the
// desired list, keyed by player id. Unchanged rows produce no write.
func diffRoster(existing []*models.PlayerTeam, desired []LineupEntry) rosterDiff {
	byPlayer := make(map[string]*models.PlayerTeam, len(existing))
	for _, row := range existing {
		byPlayer[row.PlayerID] = row
	}

	var diff rosterDiff
	wanted := make(map[string]struct{}, len(desired))
	for _, entry := range desired {
		wanted[entry.PlayerID] = struct{}{}
		row, ok := byPlayer[entry.PlayerID]
		if !ok {
			diff.toCreate = append(diff.toCreate, entry)
			continue
		}
		if row.Goals != entry.Goals {
			diff.toUpdate = append(diff.toUpdate, rosterUpdate{row: row, goals: entry.Goals})
		}
	}
	for _, row := range existing {
		if _, ok := wanted[row.PlayerID]; !ok {
			diff.toDelete = append(diff.toDelete, row)
		}
	}
	return diff
}

func (s *matchService) syncTeamRoster(ctx context.Context, exec repositories.SQLExecutor, teamID string, desired []LineupEntry) error {
	existing, err := s.playerTeamRepo.ListByTeam(ctx, exec, teamID)
	if err != nil {
		return fmt.Errorf("failed to list roster for team %s: %w", teamID, err)
	}

	diff := diffRoster(existing, desired)
	for _, entry := range diff.toCreate {
		row := &models.PlayerTeam{
			PlayerID: entry.PlayerID,
			TeamID:   teamID,
			Goals:    entry.Goals,
		}
		if err := s.playerTeamRepo.Create(ctx, exec, row); err != nil {
			return fmt.Errorf("failed to add player %s to team %s: %w", entry.PlayerID, teamID, err)
		}
	}
	for _, upd := range diff.toUpdate {
		if err := s.playerTeamRepo.UpdateGoals(ctx, exec, upd.row.ID, upd.goals); err != nil {
			return fmt.Errorf("failed to update goals for roster row %s: %w", upd.row.ID, err)
		}
	}
	for _, row := range diff.toDelete {
		if err := s.playerTeamRepo.Delete(ctx, exec, row.ID); err != nil {
			return fmt.Errorf("failed to remove roster row %s: %w", row.ID, err)
		}
	}
	return nil
}
