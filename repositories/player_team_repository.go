package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/juangiadev/fulbo/models"
)

var (
	ErrPlayerTeamNotFound = errors.New("player-team record not found")
	ErrPlayerTeamConflict = errors.New("player already assigned to this team")
)

type PlayerTeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, playerTeam *models.PlayerTeam) error
	GetByID(ctx context.Context, id string) (*models.PlayerTeam, error)
	GetByMatchAndPlayer(ctx context.Context, matchID, playerID string) (*models.PlayerTeam, error)
	ListByTeam(ctx context.Context, exec SQLExecutor, teamID string) ([]*models.PlayerTeam, error)
	ListByTeamWithPlayers(ctx context.Context, teamID string) ([]*models.PlayerTeam, error)
	// ListFinishedByTournament returns every roster row of the
	// tournament's finished matches with Team (id, match, slot, result)
	// populated. This is the standings engine input.
	ListFinishedByTournament(ctx context.Context, tournamentID string) ([]*models.PlayerTeam, error)
	UpdateGoals(ctx context.Context, exec SQLExecutor, id string, goals int) error
	Update(ctx context.Context, exec SQLExecutor, playerTeam *models.PlayerTeam) error
	Delete(ctx context.Context, exec SQLExecutor, id string) error
}

type postgresPlayerTeamRepository struct {
	db *sql.DB
}

func NewPostgresPlayerTeamRepository(db *sql.DB) PlayerTeamRepository {
	return &postgresPlayerTeamRepository{db: db}
}

func (r *postgresPlayerTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerTeamColumns = `pt.id, pt.player_id, pt.team_id, pt.goals, pt.injury, pt.created_at, pt.updated_at`

func scanPlayerTeam(row interface{ Scan(...interface{}) error }) (*models.PlayerTeam, error) {
	var pt models.PlayerTeam
	err := row.Scan(&pt.ID, &pt.PlayerID, &pt.TeamID, &pt.Goals, &pt.Injury, &pt.CreatedAt, &pt.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerTeamNotFound
		}
		return nil, err
	}
	return &pt, nil
}

func (r *postgresPlayerTeamRepository) Create(ctx context.Context, exec SQLExecutor, playerTeam *models.PlayerTeam) error {
	executor := r.getExecutor(exec)
	if playerTeam.ID == "" {
		playerTeam.ID = uuid.NewString()
	}
	query := `
		INSERT INTO player_teams (id, player_id, team_id, goals, injury)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`
	err := executor.QueryRowContext(ctx, query,
		playerTeam.ID, playerTeam.PlayerID, playerTeam.TeamID, playerTeam.Goals, playerTeam.Injury,
	).Scan(&playerTeam.CreatedAt, &playerTeam.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "uq_player_teams_player_team") {
			return ErrPlayerTeamConflict
		}
		if isForeignKeyViolation(err) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to create player-team record: %w", err)
	}
	return nil
}

func (r *postgresPlayerTeamRepository) GetByID(ctx context.Context, id string) (*models.PlayerTeam, error) {
	query := `SELECT ` + playerTeamColumns + ` FROM player_teams pt WHERE pt.id = $1`
	return scanPlayerTeam(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresPlayerTeamRepository) GetByMatchAndPlayer(ctx context.Context, matchID, playerID string) (*models.PlayerTeam, error) {
	query := `
		SELECT ` + playerTeamColumns + `
		FROM player_teams pt
		JOIN teams t ON pt.team_id = t.id
		WHERE t.match_id = $1 AND pt.player_id = $2`
	return scanPlayerTeam(r.db.QueryRowContext(ctx, query, matchID, playerID))
}

func (r *postgresPlayerTeamRepository) ListByTeam(ctx context.Context, exec SQLExecutor, teamID string) ([]*models.PlayerTeam, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + playerTeamColumns + ` FROM player_teams pt WHERE pt.team_id = $1 ORDER BY pt.created_at ASC`
	rows, err := executor.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster for team %s: %w", teamID, err)
	}
	defer rows.Close()

	records := make([]*models.PlayerTeam, 0)
	for rows.Next() {
		pt, errScan := scanPlayerTeam(rows)
		if errScan != nil {
			return nil, errScan
		}
		records = append(records, pt)
	}
	return records, rows.Err()
}

func (r *postgresPlayerTeamRepository) ListByTeamWithPlayers(ctx context.Context, teamID string) ([]*models.PlayerTeam, error) {
	query := `
		SELECT ` + playerTeamColumns + `,
			p.id, p.user_id, p.tournament_id, p.name, p.nickname, p.image_url,
			p.favorite_team_slug, p.display_preference, p.role, p.ability, p.injury, p.misses,
			p.claim_code_hash, p.claim_code_expires_at, p.created_at, p.updated_at
		FROM player_teams pt
		JOIN players p ON pt.player_id = p.id
		WHERE pt.team_id = $1
		ORDER BY pt.created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster with players for team %s: %w", teamID, err)
	}
	defer rows.Close()

	records := make([]*models.PlayerTeam, 0)
	for rows.Next() {
		var pt models.PlayerTeam
		var p models.Player
		err := rows.Scan(
			&pt.ID, &pt.PlayerID, &pt.TeamID, &pt.Goals, &pt.Injury, &pt.CreatedAt, &pt.UpdatedAt,
			&p.ID, &p.UserID, &p.TournamentID, &p.Name, &p.Nickname, &p.ImageURL,
			&p.FavoriteTeamSlug, &p.DisplayPreference, &p.Role, &p.Ability, &p.Injury,
			&p.Misses, &p.ClaimCodeHash, &p.ClaimCodeExpiresAt, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", err)
		}
		pt.Player = &p
		records = append(records, &pt)
	}
	return records, rows.Err()
}

func (r *postgresPlayerTeamRepository) ListFinishedByTournament(ctx context.Context, tournamentID string) ([]*models.PlayerTeam, error) {
	query := `
		SELECT ` + playerTeamColumns + `, t.id, t.match_id, t.slot, t.result
		FROM player_teams pt
		JOIN teams t ON pt.team_id = t.id
		JOIN matches m ON t.match_id = m.id
		WHERE m.tournament_id = $1 AND m.status = $2
		ORDER BY m.kickoff_at ASC, t.slot ASC, pt.created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID, models.MatchStatusFinished)
	if err != nil {
		return nil, fmt.Errorf("failed to list finished roster rows for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	records := make([]*models.PlayerTeam, 0)
	for rows.Next() {
		var pt models.PlayerTeam
		var t models.Team
		err := rows.Scan(
			&pt.ID, &pt.PlayerID, &pt.TeamID, &pt.Goals, &pt.Injury, &pt.CreatedAt, &pt.UpdatedAt,
			&t.ID, &t.MatchID, &t.Slot, &t.Result,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan standings roster row: %w", err)
		}
		pt.Team = &t
		records = append(records, &pt)
	}
	return records, rows.Err()
}

func (r *postgresPlayerTeamRepository) UpdateGoals(ctx context.Context, exec SQLExecutor, id string, goals int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE player_teams SET goals = $1, updated_at = now() WHERE id = $2`, goals, id)
	if err != nil {
		return fmt.Errorf("failed to update goals of player-team %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerTeamNotFound)
}

func (r *postgresPlayerTeamRepository) Update(ctx context.Context, exec SQLExecutor, playerTeam *models.PlayerTeam) error {
	executor := r.getExecutor(exec)
	query := `UPDATE player_teams SET goals = $1, injury = $2, updated_at = now() WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, playerTeam.Goals, playerTeam.Injury, playerTeam.ID)
	if err != nil {
		return fmt.Errorf("failed to update player-team %s: %w", playerTeam.ID, err)
	}
	return checkAffectedRows(result, ErrPlayerTeamNotFound)
}

func (r *postgresPlayerTeamRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM player_teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player-team %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerTeamNotFound)
}
