package domain

import (
	"time"

	"github.com/google/uuid"
)

// Post is a published video shown on the timeline.
type Post struct {
	ID uuid.UUID `json:"id"`

	// CreatorID references the user who published the post.
	CreatorID uuid.UUID `json:"creator_id"`

	// CreatorUsername is denormalized on read for the timeline view.
	CreatorUsername string `json:"creator_username"`

	Description string `json:"description"`

	// VideoKey is the object key the video was uploaded under.
	VideoKey string `json:"video_key"`

	// VideoURL is where clients fetch the video from.
	VideoURL string `json:"video_url"`

	Likes int64 `json:"likes"`

	// Paid marks content that requires payment to watch.
	Paid bool `json:"paid"`

	CreatedAt time.Time `json:"created_at"`
}

// MaxDescriptionLength bounds Post.Description.
const MaxDescriptionLength = 2000

// NewPost creates a post for an uploaded video.
func NewPost(creatorID uuid.UUID, videoKey, videoURL, description string) *Post {
	return &Post{
		ID:          uuid.New(),
		CreatorID:   creatorID,
		Description: description,
		VideoKey:    videoKey,
		VideoURL:    videoURL,
		CreatedAt:   time.Now().UTC(),
	}
}
