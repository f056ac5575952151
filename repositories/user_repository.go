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
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAuthIDConflict = errors.New("user auth id already registered")
	ErrUserEmailConflict  = errors.New("user email already registered")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByAuthID(ctx context.Context, authID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]*models.User, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, auth_id, email, name, nickname, image_url, favorite_team_slug, display_preference, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.AuthID, &u.Email, &u.Name, &u.Nickname, &u.ImageURL,
		&u.FavoriteTeamSlug, &u.DisplayPreference, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.DisplayPreference == "" {
		user.DisplayPreference = models.DisplayPreferenceImage
	}
	query := `
		INSERT INTO users (id, auth_id, email, name, nickname, image_url, favorite_team_slug, display_preference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.AuthID, user.Email, user.Name, user.Nickname,
		user.ImageURL, user.FavoriteTeamSlug, user.DisplayPreference,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "uq_users_auth_id") {
			return ErrUserAuthIDConflict
		}
		if isUniqueViolation(err, "uq_users_email") {
			return ErrUserEmailConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresUserRepository) GetByAuthID(ctx context.Context, authID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE auth_id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, authID))
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			email = $1, name = $2, nickname = $3, image_url = $4,
			favorite_team_slug = $5, display_preference = $6, updated_at = now()
		WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query,
		user.Email, user.Name, user.Nickname, user.ImageURL,
		user.FavoriteTeamSlug, user.DisplayPreference, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "uq_users_email") {
			return ErrUserEmailConflict
		}
		return fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, errScan := scanUser(rows)
		if errScan != nil {
			return nil, errScan
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
