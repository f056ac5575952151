package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/juangiadev/fulbo/models"
)

var ErrJoinRequestNotFound = errors.New("join request not found")

type JoinRequestRepository interface {
	Create(ctx context.Context, request *models.TournamentJoinRequest) error
	GetPendingByID(ctx context.Context, tournamentID, requestID string) (*models.TournamentJoinRequest, error)
	GetPendingByTournamentAndUser(ctx context.Context, tournamentID, userID string) (*models.TournamentJoinRequest, error)
	ListPendingByTournament(ctx context.Context, tournamentID string) ([]*models.TournamentJoinRequest, error)
	ListPendingByUser(ctx context.Context, userID string) ([]*models.TournamentJoinRequest, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.JoinRequestStatus) error
}

type postgresJoinRequestRepository struct {
	db *sql.DB
}

func NewPostgresJoinRequestRepository(db *sql.DB) JoinRequestRepository {
	return &postgresJoinRequestRepository{db: db}
}

func (r *postgresJoinRequestRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const joinRequestColumns = `jr.id, jr.tournament_id, jr.user_id, jr.status, jr.created_at, jr.updated_at`

func scanJoinRequest(row interface{ Scan(...interface{}) error }) (*models.TournamentJoinRequest, error) {
	var jr models.TournamentJoinRequest
	err := row.Scan(&jr.ID, &jr.TournamentID, &jr.UserID, &jr.Status, &jr.CreatedAt, &jr.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJoinRequestNotFound
		}
		return nil, err
	}
	return &jr, nil
}

func (r *postgresJoinRequestRepository) Create(ctx context.Context, request *models.TournamentJoinRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.Status == "" {
		request.Status = models.JoinRequestPending
	}
	query := `
		INSERT INTO tournament_join_requests (id, tournament_id, user_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		request.ID, request.TournamentID, request.UserID, request.Status,
	).Scan(&request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to create join request: %w", err)
	}
	return nil
}

func (r *postgresJoinRequestRepository) GetPendingByID(ctx context.Context, tournamentID, requestID string) (*models.TournamentJoinRequest, error) {
	query := `
		SELECT ` + joinRequestColumns + `
		FROM tournament_join_requests jr
		WHERE jr.id = $1 AND jr.tournament_id = $2 AND jr.status = $3`
	return scanJoinRequest(r.db.QueryRowContext(ctx, query, requestID, tournamentID, models.JoinRequestPending))
}

func (r *postgresJoinRequestRepository) GetPendingByTournamentAndUser(ctx context.Context, tournamentID, userID string) (*models.TournamentJoinRequest, error) {
	query := `
		SELECT ` + joinRequestColumns + `
		FROM tournament_join_requests jr
		WHERE jr.tournament_id = $1 AND jr.user_id = $2 AND jr.status = $3`
	return scanJoinRequest(r.db.QueryRowContext(ctx, query, tournamentID, userID, models.JoinRequestPending))
}

func (r *postgresJoinRequestRepository) ListPendingByTournament(ctx context.Context, tournamentID string) ([]*models.TournamentJoinRequest, error) {
	query := `
		SELECT ` + joinRequestColumns + `,
			u.id, u.auth_id, u.email, u.name, u.nickname, u.image_url
		FROM tournament_join_requests jr
		JOIN users u ON jr.user_id = u.id
		WHERE jr.tournament_id = $1 AND jr.status = $2
		ORDER BY jr.created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID, models.JoinRequestPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list join requests for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	requests := make([]*models.TournamentJoinRequest, 0)
	for rows.Next() {
		var jr models.TournamentJoinRequest
		var u models.User
		err := rows.Scan(
			&jr.ID, &jr.TournamentID, &jr.UserID, &jr.Status, &jr.CreatedAt, &jr.UpdatedAt,
			&u.ID, &u.AuthID, &u.Email, &u.Name, &u.Nickname, &u.ImageURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan join request row: %w", err)
		}
		jr.User = &u
		requests = append(requests, &jr)
	}
	return requests, rows.Err()
}

func (r *postgresJoinRequestRepository) ListPendingByUser(ctx context.Context, userID string) ([]*models.TournamentJoinRequest, error) {
	query := `
		SELECT ` + joinRequestColumns + `,
			t.id, t.name, t.visibility, t.image_key, t.leader_banner_key, t.scorer_banner_key,
			t.finished_at, t.created_at, t.updated_at
		FROM tournament_join_requests jr
		JOIN tournaments t ON jr.tournament_id = t.id
		WHERE jr.user_id = $1 AND jr.status = $2
		ORDER BY jr.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID, models.JoinRequestPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list join requests for user %s: %w", userID, err)
	}
	defer rows.Close()

	requests := make([]*models.TournamentJoinRequest, 0)
	for rows.Next() {
		var jr models.TournamentJoinRequest
		var t models.Tournament
		err := rows.Scan(
			&jr.ID, &jr.TournamentID, &jr.UserID, &jr.Status, &jr.CreatedAt, &jr.UpdatedAt,
			&t.ID, &t.Name, &t.Visibility, &t.ImageKey, &t.LeaderBannerKey, &t.ScorerBannerKey,
			&t.FinishedAt, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan join request row: %w", err)
		}
		jr.Tournament = &t
		requests = append(requests, &jr)
	}
	return requests, rows.Err()
}

func (r *postgresJoinRequestRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.JoinRequestStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE tournament_join_requests SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update join request %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrJoinRequestNotFound)
}
