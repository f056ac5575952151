package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/juangiadev/fulbo/models"
)

var ErrInviteNotFound = errors.New("tournament invite not found")

type InviteRepository interface {
	// Upsert replaces the tournament's single active invite code.
	Upsert(ctx context.Context, invite *models.TournamentInvite) error
	GetByTournament(ctx context.Context, tournamentID string) (*models.TournamentInvite, error)
	GetByCodeHash(ctx context.Context, codeHash string) (*models.TournamentInvite, error)
}

type postgresInviteRepository struct {
	db *sql.DB
}

func NewPostgresInviteRepository(db *sql.DB) InviteRepository {
	return &postgresInviteRepository{db: db}
}

const inviteColumns = `id, tournament_id, code_hash, expires_at, created_at, updated_at`

func scanInvite(row interface{ Scan(...interface{}) error }) (*models.TournamentInvite, error) {
	var i models.TournamentInvite
	err := row.Scan(&i.ID, &i.TournamentID, &i.CodeHash, &i.ExpiresAt, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	return &i, nil
}

func (r *postgresInviteRepository) Upsert(ctx context.Context, invite *models.TournamentInvite) error {
	if invite.ID == "" {
		invite.ID = uuid.NewString()
	}
	query := `
		INSERT INTO tournament_invites (id, tournament_id, code_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tournament_id) DO UPDATE
			SET code_hash = EXCLUDED.code_hash, expires_at = EXCLUDED.expires_at, updated_at = now()
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		invite.ID, invite.TournamentID, invite.CodeHash, invite.ExpiresAt,
	).Scan(&invite.ID, &invite.CreatedAt, &invite.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to upsert invite for tournament %s: %w", invite.TournamentID, err)
	}
	return nil
}

func (r *postgresInviteRepository) GetByTournament(ctx context.Context, tournamentID string) (*models.TournamentInvite, error) {
	query := `SELECT ` + inviteColumns + ` FROM tournament_invites WHERE tournament_id = $1`
	return scanInvite(r.db.QueryRowContext(ctx, query, tournamentID))
}

func (r *postgresInviteRepository) GetByCodeHash(ctx context.Context, codeHash string) (*models.TournamentInvite, error) {
	query := `SELECT ` + inviteColumns + ` FROM tournament_invites WHERE code_hash = $1`
	return scanInvite(r.db.QueryRowContext(ctx, query, codeHash))
}
