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
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerUserConflict = errors.New("user already has a player in this tournament")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, id string) (*models.Player, error)
	GetByTournamentAndID(ctx context.Context, tournamentID, playerID string) (*models.Player, error)
	GetByTournamentAndUser(ctx context.Context, tournamentID, userID string) (*models.Player, error)
	// GetActor resolves the player behind an identity-provider subject
	// within a tournament, used for every permission check.
	GetActor(ctx context.Context, tournamentID, authID string) (*models.Player, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Player, error)
	ListByIDs(ctx context.Context, ids []string) ([]*models.Player, error)
	GetByClaimCodeHash(ctx context.Context, tournamentID *string, codeHash string) (*models.Player, error)
	Update(ctx context.Context, exec SQLExecutor, player *models.Player) error
	UpdateRole(ctx context.Context, exec SQLExecutor, playerID string, role models.PlayerRole) error
	Delete(ctx context.Context, id string) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `p.id, p.user_id, p.tournament_id, p.name, p.nickname, p.image_url,
	p.favorite_team_slug, p.display_preference, p.role, p.ability, p.injury, p.misses,
	p.claim_code_hash, p.claim_code_expires_at, p.created_at, p.updated_at`

func scanPlayer(row interface{ Scan(...interface{}) error }) (*models.Player, error) {
	var p models.Player
	err := row.Scan(
		&p.ID, &p.UserID, &p.TournamentID, &p.Name, &p.Nickname, &p.ImageURL,
		&p.FavoriteTeamSlug, &p.DisplayPreference, &p.Role, &p.Ability, &p.Injury,
		&p.Misses, &p.ClaimCodeHash, &p.ClaimCodeExpiresAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	executor := r.getExecutor(exec)
	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	if player.Role == "" {
		player.Role = models.RoleUser
	}
	if player.DisplayPreference == "" {
		player.DisplayPreference = models.DisplayPreferenceImage
	}
	query := `
		INSERT INTO players (id, user_id, tournament_id, name, nickname, image_url,
			favorite_team_slug, display_preference, role, ability, injury, misses,
			claim_code_hash, claim_code_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`
	err := executor.QueryRowContext(ctx, query,
		player.ID, player.UserID, player.TournamentID, player.Name, player.Nickname,
		player.ImageURL, player.FavoriteTeamSlug, player.DisplayPreference, player.Role,
		player.Ability, player.Injury, player.Misses, player.ClaimCodeHash, player.ClaimCodeExpiresAt,
	).Scan(&player.CreatedAt, &player.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "uq_players_user_tournament") {
			return ErrPlayerUserConflict
		}
		if isForeignKeyViolation(err) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players p WHERE p.id = $1`
	return scanPlayer(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresPlayerRepository) GetByTournamentAndID(ctx context.Context, tournamentID, playerID string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players p WHERE p.id = $1 AND p.tournament_id = $2`
	return scanPlayer(r.db.QueryRowContext(ctx, query, playerID, tournamentID))
}

func (r *postgresPlayerRepository) GetByTournamentAndUser(ctx context.Context, tournamentID, userID string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players p WHERE p.tournament_id = $1 AND p.user_id = $2`
	return scanPlayer(r.db.QueryRowContext(ctx, query, tournamentID, userID))
}

func (r *postgresPlayerRepository) GetActor(ctx context.Context, tournamentID, authID string) (*models.Player, error) {
	query := `
		SELECT ` + playerColumns + `
		FROM players p
		JOIN users u ON p.user_id = u.id
		WHERE p.tournament_id = $1 AND u.auth_id = $2`
	return scanPlayer(r.db.QueryRowContext(ctx, query, tournamentID, authID))
}

func (r *postgresPlayerRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Player, error) {
	query := `
		SELECT ` + playerColumns + `,
			u.id, u.auth_id, u.email, u.name, u.nickname, u.image_url,
			u.favorite_team_slug, u.display_preference, u.created_at, u.updated_at
		FROM players p
		LEFT JOIN users u ON p.user_id = u.id
		WHERE p.tournament_id = $1
		ORDER BY p.created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var p models.Player
		var uID, uAuthID, uEmail, uName sql.NullString
		var uNickname, uImageURL, uFavoriteTeamSlug, uDisplayPreference sql.NullString
		var uCreatedAt, uUpdatedAt sql.NullTime
		err := rows.Scan(
			&p.ID, &p.UserID, &p.TournamentID, &p.Name, &p.Nickname, &p.ImageURL,
			&p.FavoriteTeamSlug, &p.DisplayPreference, &p.Role, &p.Ability, &p.Injury,
			&p.Misses, &p.ClaimCodeHash, &p.ClaimCodeExpiresAt, &p.CreatedAt, &p.UpdatedAt,
			&uID, &uAuthID, &uEmail, &uName, &uNickname, &uImageURL,
			&uFavoriteTeamSlug, &uDisplayPreference, &uCreatedAt, &uUpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		if uID.Valid {
			user := &models.User{
				ID:     uID.String,
				AuthID: uAuthID.String,
				Email:  uEmail.String,
				Name:   uName.String,
			}
			if uNickname.Valid {
				user.Nickname = &uNickname.String
			}
			if uImageURL.Valid {
				user.ImageURL = &uImageURL.String
			}
			if uFavoriteTeamSlug.Valid {
				user.FavoriteTeamSlug = &uFavoriteTeamSlug.String
			}
			user.DisplayPreference = models.DisplayPreference(uDisplayPreference.String)
			user.CreatedAt = uCreatedAt.Time
			user.UpdatedAt = uUpdatedAt.Time
			p.User = user
		}
		players = append(players, &p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) ListByIDs(ctx context.Context, ids []string) ([]*models.Player, error) {
	if len(ids) == 0 {
		return []*models.Player{}, nil
	}
	query := `SELECT ` + playerColumns + ` FROM players p WHERE p.id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list players by ids: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0, len(ids))
	for rows.Next() {
		p, errScan := scanPlayer(rows)
		if errScan != nil {
			return nil, errScan
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// GetByClaimCodeHash looks a guest player up by the hash of its claim
// code. tournamentID narrows the search when the claim is scoped.
func (r *postgresPlayerRepository) GetByClaimCodeHash(ctx context.Context, tournamentID *string, codeHash string) (*models.Player, error) {
	if tournamentID != nil {
		query := `SELECT ` + playerColumns + ` FROM players p WHERE p.tournament_id = $1 AND p.claim_code_hash = $2`
		return scanPlayer(r.db.QueryRowContext(ctx, query, *tournamentID, codeHash))
	}
	query := `SELECT ` + playerColumns + ` FROM players p WHERE p.claim_code_hash = $1`
	return scanPlayer(r.db.QueryRowContext(ctx, query, codeHash))
}

func (r *postgresPlayerRepository) Update(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE players SET
			user_id = $1, name = $2, nickname = $3, image_url = $4, favorite_team_slug = $5,
			display_preference = $6, role = $7, ability = $8, injury = $9, misses = $10,
			claim_code_hash = $11, claim_code_expires_at = $12, updated_at = now()
		WHERE id = $13`
	result, err := executor.ExecContext(ctx, query,
		player.UserID, player.Name, player.Nickname, player.ImageURL, player.FavoriteTeamSlug,
		player.DisplayPreference, player.Role, player.Ability, player.Injury, player.Misses,
		player.ClaimCodeHash, player.ClaimCodeExpiresAt, player.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "uq_players_user_tournament") {
			return ErrPlayerUserConflict
		}
		return fmt.Errorf("failed to update player %s: %w", player.ID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdateRole(ctx context.Context, exec SQLExecutor, playerID string, role models.PlayerRole) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE players SET role = $1, updated_at = now() WHERE id = $2`, role, playerID)
	if err != nil {
		return fmt.Errorf("failed to update role of player %s: %w", playerID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
