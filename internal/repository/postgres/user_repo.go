package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/vidfeed/internal/domain"
	"github.com/prn-tf/vidfeed/internal/repository"
)

const userColumns = `id, username, email, password_hash, is_active, accepted_terms_at, created_at, updated_at`

// userRepository implements repository.UserRepository.
type userRepository struct {
	db Querier
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db Querier) repository.UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsActive,
		user.AcceptedTermsAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if pgErrorCode(err) == codeUniqueViolation {
			return fmt.Errorf("%w: username or email", repository.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row, "id")
}

// GetByUsername retrieves a user by username, ignoring case.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)`, username)
	return scanUser(row, "username")
}

// Update updates an existing user.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET username = $1, email = $2, password_hash = $3, is_active = $4, updated_at = $5
		WHERE id = $6
	`

	tag, err := r.db.Exec(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsActive,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if pgErrorCode(err) == codeUniqueViolation {
			return fmt.Errorf("%w: username or email", repository.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ExistsByUsername checks if a user with the given username exists.
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(username) = LOWER($1))`, username)
}

// ExistsByEmail checks if a user with the given email exists.
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email)
}

func (r *userRepository) exists(ctx context.Context, query, arg string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

func scanUser(row pgx.Row, by string) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.AcceptedTermsAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", by, err)
	}
	return &user, nil
}
