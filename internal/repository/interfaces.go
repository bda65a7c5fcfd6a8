// Package repository defines data access interfaces for vidfeed.
// These interfaces abstract database operations, allowing for different implementations
// (PostgreSQL, SQLite, in-memory for testing) while keeping the service layer clean.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/prn-tf/vidfeed/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create creates a new user.
	// Returns ErrAlreadyExists on a username or email conflict.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *domain.User) error

	// ExistsByUsername checks if a user with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// =============================================================================
// Post Repository
// =============================================================================

// PostRepository defines the interface for post data access.
type PostRepository interface {
	// Create stores a new post.
	// Returns ErrAlreadyExists if a post already references the same video key.
	Create(ctx context.Context, post *domain.Post) error

	// GetByID retrieves a post by ID, with CreatorUsername populated.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)

	// ListRecent returns posts newest first, with CreatorUsername populated.
	ListRecent(ctx context.Context, opts ListOptions) ([]*domain.Post, error)
}

// =============================================================================
// Common Types
// =============================================================================

// ListOptions contains common pagination options.
type ListOptions struct {
	// Offset is the number of records to skip.
	Offset int

	// Limit is the maximum number of records to return.
	Limit int
}
