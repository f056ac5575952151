package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/juangiadev/fulbo/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error)
	ListFinishedByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error)
	Update(ctx context.Context, match *models.Match) error
	Delete(ctx context.Context, id string) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, place_name, place_url, kickoff_at, stage, status, mvp_player_id, created_at, updated_at`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.PlaceName, &m.PlaceURL, &m.KickoffAt,
		&m.Stage, &m.Status, &m.MVPPlayerID, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	if match.Status == "" {
		match.Status = models.MatchStatusPending
	}
	query := `
		INSERT INTO matches (id, tournament_id, place_name, place_url, kickoff_at, stage, status, mvp_player_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		match.ID, match.TournamentID, match.PlaceName, match.PlaceURL,
		match.KickoffAt, match.Stage, match.Status, match.MVPPlayerID,
	).Scan(&match.CreatedAt, &match.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return scanMatch(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, errScan := scanMatch(rows)
		if errScan != nil {
			return nil, errScan
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY kickoff_at ASC`
	matches, err := r.list(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %s: %w", tournamentID, err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) ListFinishedByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 AND status = $2 ORDER BY kickoff_at ASC`
	matches, err := r.list(ctx, query, tournamentID, models.MatchStatusFinished)
	if err != nil {
		return nil, fmt.Errorf("failed to list finished matches for tournament %s: %w", tournamentID, err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, match *models.Match) error {
	query := `
		UPDATE matches SET
			place_name = $1, place_url = $2, kickoff_at = $3, stage = $4,
			status = $5, mvp_player_id = $6, updated_at = now()
		WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query,
		match.PlaceName, match.PlaceURL, match.KickoffAt, match.Stage,
		match.Status, match.MVPPlayerID, match.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to update match %s: %w", match.ID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
