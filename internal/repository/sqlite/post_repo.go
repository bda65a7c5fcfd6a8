package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/vidfeed/internal/domain"
	"github.com/prn-tf/vidfeed/internal/repository"
)

const postSelect = `
	SELECT p.id, p.creator_id, u.username, p.description, p.video_key, p.video_url, p.likes, p.paid, p.created_at
	FROM posts p
	JOIN users u ON u.id = p.creator_id
`

// postRepository implements repository.PostRepository for SQLite.
type postRepository struct {
	db *DB
}

// NewPostRepository creates a new SQLite post repository.
func NewPostRepository(db *DB) repository.PostRepository {
	return &postRepository{db: db}
}

// Create stores a new post.
func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, creator_id, description, video_key, video_url, likes, paid, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.db.ExecContext(ctx, query,
		post.ID.String(),
		post.CreatorID.String(),
		post.Description,
		post.VideoKey,
		post.VideoURL,
		post.Likes,
		boolToInt(post.Paid),
		formatTime(post.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: video %s already published", repository.ErrAlreadyExists, post.VideoKey)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: creator %s", repository.ErrNotFound, post.CreatorID)
		}
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by ID.
func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	rows, err := r.db.db.QueryContext(ctx, postSelect+` WHERE p.id = ?`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get post: %w", err)
		}
		return nil, repository.ErrNotFound
	}
	return scanPost(rows)
}

// ListRecent returns posts newest first.
func (r *postRepository) ListRecent(ctx context.Context, opts repository.ListOptions) ([]*domain.Post, error) {
	rows, err := r.db.db.QueryContext(ctx,
		postSelect+` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`,
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
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*domain.Post, error) {
	var (
		post                 domain.Post
		id, creatorID, ctime string
		paid                 int
	)

	err := row.Scan(&id, &creatorID, &post.CreatorUsername, &post.Description, &post.VideoKey, &post.VideoURL, &post.Likes, &paid, &ctime)
	if err != nil {
		return nil, fmt.Errorf("failed to scan post: %w", err)
	}

	if post.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("bad post id %q: %w", id, err)
	}
	if post.CreatorID, err = uuid.Parse(creatorID); err != nil {
		return nil, fmt.Errorf("bad creator id %q: %w", creatorID, err)
	}
	post.Paid = paid != 0
	if post.CreatedAt, err = parseTime(ctime); err != nil {
		return nil, err
	}
	return &post, nil
}
