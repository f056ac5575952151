package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/juangiadev/fulbo/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	ListByMemberUser(ctx context.Context, userID string) ([]*models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	Delete(ctx context.Context, id string) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `id, name, visibility, image_key, leader_banner_key, scorer_banner_key, finished_at, created_at, updated_at`

func scanTournament(row interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	var t models.Tournament
	err := row.Scan(
		&t.ID, &t.Name, &t.Visibility, &t.ImageKey, &t.LeaderBannerKey,
		&t.ScorerBannerKey, &t.FinishedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error {
	executor := r.getExecutor(exec)
	if tournament.ID == "" {
		tournament.ID = uuid.NewString()
	}
	if tournament.Visibility == "" {
		tournament.Visibility = models.VisibilityPrivate
	}
	query := `
		INSERT INTO tournaments (id, name, visibility)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`
	err := executor.QueryRowContext(ctx, query,
		tournament.ID, tournament.Name, tournament.Visibility,
	).Scan(&tournament.CreatedAt, &tournament.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return scanTournament(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) ListByMemberUser(ctx context.Context, userID string) ([]*models.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments t
		JOIN players p ON p.tournament_id = t.id
		WHERE p.user_id = $1
		ORDER BY t.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments for user %s: %w", userID, err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, errScan := scanTournament(rows)
		if errScan != nil {
			return nil, errScan
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) Update(ctx context.Context, tournament *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			name = $1, visibility = $2, image_key = $3, leader_banner_key = $4,
			scorer_banner_key = $5, finished_at = $6, updated_at = now()
		WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query,
		tournament.Name, tournament.Visibility, tournament.ImageKey,
		tournament.LeaderBannerKey, tournament.ScorerBannerKey,
		tournament.FinishedAt, tournament.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tournament %s: %w", tournament.ID, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
