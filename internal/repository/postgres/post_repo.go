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

const postSelect = `
	SELECT p.id, p.creator_id, u.username, p.description, p.video_key, p.video_url, p.likes, p.paid, p.created_at
	FROM posts p
	JOIN users u ON u.id = p.creator_id
`

// postRepository implements repository.PostRepository. Reads go to the
// replica when one is configured.
type postRepository struct {
	writer Querier
	reader Querier
}

// NewPostRepository creates a new PostgreSQL post repository.
func NewPostRepository(writer, reader Querier) repository.PostRepository {
	return &postRepository{writer: writer, reader: reader}
}

// Create stores a new post.
func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, creator_id, description, video_key, video_url, likes, paid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.writer.Exec(ctx, query,
		post.ID,
		post.CreatorID,
		post.Description,
		post.VideoKey,
		post.VideoURL,
		post.Likes,
		post.Paid,
		post.CreatedAt,
	)
	if err != nil {
		switch pgErrorCode(err) {
		case codeUniqueViolation:
			return fmt.Errorf("%w: video %s already published", repository.ErrAlreadyExists, post.VideoKey)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: creator %s", repository.ErrNotFound, post.CreatorID)
		}
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by ID from the primary.
func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	post, err := scanPost(r.writer.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// ListRecent returns posts newest first.
func (r *postRepository) ListRecent(ctx context.Context, opts repository.ListOptions) ([]*domain.Post, error) {
	rows, err := r.reader.Query(ctx,
		postSelect+` ORDER BY p.created_at DESC, p.id DESC LIMIT $1 OFFSET $2`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0, opts.Limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var post domain.Post
	err := row.Scan(
		&post.ID,
		&post.CreatorID,
		&post.CreatorUsername,
		&post.Description,
		&post.VideoKey,
		&post.VideoURL,
		&post.Likes,
		&post.Paid,
		&post.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}
