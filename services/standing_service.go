package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/juangiadev/fulbo/models"
	"github.com/juangiadev/fulbo/repositories"
)

// StandingRow is one line of the tournament table. Field names follow
// the public API contract.
type StandingRow struct {
	PlayerID      string `json:"playerId"`
	DisplayName   string `json:"displayName"`
	MVP           int    `json:"mvp"`
	Points        int    `json:"points"`
	Goals         int    `json:"goals"`
	Win           int    `json:"win"`
	Draw          int    `json:"draw"`
	Loose         int    `json:"loose"`
	MatchesPlayed int    `json:"matchesPlayed"`
	Position      int    `json:"position"`
}

type TournamentSummary struct {
	TournamentID      string        `json:"tournamentId"`
	Standings         []StandingRow `json:"standings"`
	LeaderPlayerID    *string       `json:"leaderPlayerId"`
	TopScorerPlayerID *string       `json:"topScorerPlayerId"`
}

type StandingService interface {
	GetTournamentSummary(ctx context.Context, tournamentID, authID string) (*TournamentSummary, error)
}

type standingService struct {
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	matchRepo      repositories.MatchRepository
	teamRepo       repositories.TeamRepository
	playerTeamRepo repositories.PlayerTeamRepository
}

func NewStandingService(
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	playerTeamRepo repositories.PlayerTeamRepository,
) StandingService {
	return &standingService{
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		matchRepo:      matchRepo,
		teamRepo:       teamRepo,
		playerTeamRepo: playerTeamRepo,
	}
}

func (s *standingService) GetTournamentSummary(ctx context.Context, tournamentID, authID string) (*TournamentSummary, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", tournamentID, err)
	}

	if _, err := resolveActor(ctx, s.playerRepo, tournamentID, authID); err != nil {
		return nil, err
	}

	var (
		players    []*models.Player
		matches    []*models.Match
		rosterRows []*models.PlayerTeam
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		players, err = s.playerRepo.ListByTournament(gCtx, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListFinishedByTournament(gCtx, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		rosterRows, err = s.playerTeamRepo.ListFinishedByTournament(gCtx, tournamentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load standings input for tournament %s: %w", tournamentID, err)
	}

	matchIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		matchIDs = append(matchIDs, m.ID)
	}
	teams, err := s.teamRepo.ListByMatchIDs(ctx, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams for tournament %s: %w", tournamentID, err)
	}

	summary := computeSummary(tournamentID, players, matches, teams, rosterRows)
	return summary, nil
}

// computeSummary builds the ranked table from finished-match data. It
// recomputes each team's result from summed roster goals instead of
// trusting the stored result column, so stale rows cannot skew the
// table.
func computeSummary(
	tournamentID string,
	players []*models.Player,
	matches []*models.Match,
	teams []*models.Team,
	rosterRows []*models.PlayerTeam,
) *TournamentSummary {
	rows := make([]StandingRow, 0, len(players))
	index := make(map[string]int, len(players))
	for i, p := range players {
		index[p.ID] = i
		rows = append(rows, StandingRow{
			PlayerID:    p.ID,
			DisplayName: p.DisplayName(),
		})
	}

	for _, m := range matches {
		if m.MVPPlayerID == nil {
			continue
		}
		if i, ok := index[*m.MVPPlayerID]; ok {
			rows[i].MVP++
		}
	}

	goalsByTeam := make(map[string]int)
	for _, row := range rosterRows {
		goalsByTeam[row.TeamID] += row.Goals
	}

	teamsByMatch := make(map[string][]*models.Team)
	for _, t := range teams {
		teamsByMatch[t.MatchID] = append(teamsByMatch[t.MatchID], t)
	}

	resultByTeam := make(map[string]models.TeamResult, len(teams))
	for _, matchTeams := range teamsByMatch {
		if len(matchTeams) < 2 {
			for _, t := range matchTeams {
				resultByTeam[t.ID] = models.TeamResultPending
			}
			continue
		}
		a, b := matchTeams[0], matchTeams[1]
		goalsA, goalsB := goalsByTeam[a.ID], goalsByTeam[b.ID]
		switch {
		case goalsA == goalsB:
			resultByTeam[a.ID] = models.TeamResultDraw
			resultByTeam[b.ID] = models.TeamResultDraw
		case goalsA > goalsB:
			resultByTeam[a.ID] = models.TeamResultWinner
			resultByTeam[b.ID] = models.TeamResultLoser
		default:
			resultByTeam[a.ID] = models.TeamResultLoser
			resultByTeam[b.ID] = models.TeamResultWinner
		}
	}

	playedMatches := make(map[string]map[string]struct{}, len(players))
	for _, row := range rosterRows {
		i, ok := index[row.PlayerID]
		if !ok {
			continue
		}
		rows[i].Goals += row.Goals

		switch resultByTeam[row.TeamID] {
		case models.TeamResultWinner:
			rows[i].Win++
			rows[i].Points += 3
		case models.TeamResultDraw:
			rows[i].Draw++
			rows[i].Points++
		case models.TeamResultLoser:
			rows[i].Loose++
		}

		if row.Team != nil {
			if playedMatches[row.PlayerID] == nil {
				playedMatches[row.PlayerID] = make(map[string]struct{})
			}
			playedMatches[row.PlayerID][row.Team.MatchID] = struct{}{}
		}
	}
	for playerID, matchSet := range playedMatches {
		rows[index[playerID]].MatchesPlayed = len(matchSet)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].Goals != rows[j].Goals {
			return rows[i].Goals > rows[j].Goals
		}
		return rows[i].MatchesPlayed > rows[j].MatchesPlayed
	})
	for i := range rows {
		rows[i].Position = i + 1
	}

	summary := &TournamentSummary{
		TournamentID: tournamentID,
		Standings:    rows,
	}
	if len(rows) > 0 {
		summary.LeaderPlayerID = &rows[0].PlayerID

		// The top scorer is the highest-ranked player with the maximum
		// goal count, even when that maximum is zero.
		top := 0
		for i := 1; i < len(rows); i++ {
			if rows[i].Goals > rows[top].Goals {
				top = i
			}
		}
		summary.TopScorerPlayerID = &rows[top].PlayerID
	}
	return summary
}
