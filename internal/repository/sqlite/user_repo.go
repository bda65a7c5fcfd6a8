package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/vidfeed/internal/domain"
	"github.com/prn-tf/vidfeed/internal/repository"
)

const userColumns = `id, username, email, password_hash, is_active, accepted_terms_at, created_at, updated_at`

// userRepository implements repository.UserRepository for SQLite.
type userRepository struct {
	db *DB
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.db.ExecContext(ctx, query,
		user.ID.String(),
		user.Username,
		user.Email,
		user.PasswordHash,
		boolToInt(user.IsActive),
		formatTime(user.AcceptedTermsAt),
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username or email", repository.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.db.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id.String())
	return scanUser(row, "id")
}

// GetByUsername retrieves a user by username, ignoring case.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row, "username")
}

// Update updates an existing user.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET username = ?, email = ?, password_hash = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.db.ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		boolToInt(user.IsActive),
		formatTime(user.UpdatedAt),
		user.ID.String(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username or email", repository.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ExistsByUsername checks if a user with the given username exists.
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, username)
}

// ExistsByEmail checks if a user with the given email exists.
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email)
}

func (r *userRepository) exists(ctx context.Context, query, arg string) (bool, error) {
	var exists int
	if err := r.db.db.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists != 0, nil
}

func scanUser(row *sql.Row, by string) (*domain.User, error) {
	var (
		user                           domain.User
		id                             string
		isActive                       int
		acceptedAt, createdAt, updated string
	)

	err := row.Scan(&id, &user.Username, &user.Email, &user.PasswordHash, &isActive, &acceptedAt, &createdAt, &updated)
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", by, err)
	}

	if user.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("bad user id %q: %w", id, err)
	}
	user.IsActive = isActive != 0
	if user.AcceptedTermsAt, err = parseTime(acceptedAt); err != nil {
		return nil, err
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if user.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &user, nil
}
