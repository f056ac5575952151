package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/juangiadev/fulbo/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamSlotConflict = errors.New("team slot already taken for this match")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, id string) (*models.Team, error)
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID string) ([]*models.Team, error)
	ListByMatchIDs(ctx context.Context, matchIDs []string) ([]*models.Team, error)
	CountByMatch(ctx context.Context, matchID string) (int, error)
	Update(ctx context.Context, exec SQLExecutor, team *models.Team) error
	Delete(ctx context.Context, id string) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const teamColumns = `id, match_id, slot, name, color, image_url, result, created_at, updated_at`

func scanTeam(row interface{ Scan(...interface{}) error }) (*models.Team, error) {
	var t models.Team
	err := row.Scan(
		&t.ID, &t.MatchID, &t.Slot, &t.Name, &t.Color, &t.ImageURL,
		&t.Result, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	executor := r.getExecutor(exec)
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	if team.Result == "" {
		team.Result = models.TeamResultPending
	}
	query := `
		INSERT INTO teams (id, match_id, slot, name, color, image_url, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`
	err := executor.QueryRowContext(ctx, query,
		team.ID, team.MatchID, team.Slot, team.Name, team.Color, team.ImageURL, team.Result,
	).Scan(&team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "uq_teams_match_slot") {
			return ErrTeamSlotConflict
		}
		if isForeignKeyViolation(err) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return scanTeam(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresTeamRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID string) ([]*models.Team, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + teamColumns + ` FROM teams WHERE match_id = $1 ORDER BY slot ASC`
	rows, err := executor.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for match %s: %w", matchID, err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0, 2)
	for rows.Next() {
		t, errScan := scanTeam(rows)
		if errScan != nil {
			return nil, errScan
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) ListByMatchIDs(ctx context.Context, matchIDs []string) ([]*models.Team, error) {
	if len(matchIDs) == 0 {
		return []*models.Team{}, nil
	}
	query := `SELECT ` + teamColumns + ` FROM teams WHERE match_id = ANY($1) ORDER BY match_id, slot ASC`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(matchIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list teams by match ids: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		t, errScan := scanTeam(rows)
		if errScan != nil {
			return nil, errScan
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) CountByMatch(ctx context.Context, matchID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams WHERE match_id = $1`, matchID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count teams for match %s: %w", matchID, err)
	}
	return count, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE teams SET
			name = $1, color = $2, image_url = $3, result = $4, updated_at = now()
		WHERE id = $5`
	result, err := executor.ExecContext(ctx, query,
		team.Name, team.Color, team.ImageURL, team.Result, team.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update team %s: %w", team.ID, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
