package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/vidfeed/internal/auth"
	"github.com/prn-tf/vidfeed/internal/domain"
	"github.com/prn-tf/vidfeed/internal/service"
)

// TimelineHandler serves the feed and publishing.
type TimelineHandler struct {
	timeline *service.TimelineService
	logger   zerolog.Logger
}

// NewTimelineHandler creates a new TimelineHandler.
func NewTimelineHandler(timeline *service.TimelineService, logger zerolog.Logger) *TimelineHandler {
	return &TimelineHandler{
		timeline: timeline,
		logger:   logger.With().Str("handler", "timeline").Logger(),
	}
}

type postResponse struct {
	ID              uuid.UUID `json:"id"`
	CreatorUsername string    `json:"creator_username"`
	Description     string    `json:"description"`
	VideoURL        string    `json:"video_url"`
	Likes           int64     `json:"likes"`
	Paid            bool      `json:"paid"`
	CreatedAt       time.Time `json:"created_at"`
}

func newPostResponse(p *domain.Post) postResponse {
	return postResponse{
		ID:              p.ID,
		CreatorUsername: p.CreatorUsername,
		Description:     p.Description,
		VideoURL:        p.VideoURL,
		Likes:           p.Likes,
		Paid:            p.Paid,
		CreatedAt:       p.CreatedAt,
	}
}

type timelineResponse struct {
	Posts      []postResponse `json:"posts"`
	NextCursor *int           `json:"next_cursor"`
}

// Timeline handles GET /v1/timeline?cursor=N.
func (h *TimelineHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	cursor, err := service.ParseCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.timeline.Page(r.Context(), cursor)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := timelineResponse{
		Posts:      make([]postResponse, 0, len(page.Posts)),
		NextCursor: page.NextCursor,
	}
	for _, p := range page.Posts {
		resp.Posts = append(resp.Posts, newPostResponse(p))
	}
	writeJSON(w, r, http.StatusOK, resp)
}

type publishRequest struct {
	VideoID     string `json:"video_id"`
	Description string `json:"description"`
}

// Publish handles POST /v1/posts.
func (h *TimelineHandler) Publish(w http.ResponseWriter, r *http.Request) {
	authCtx, err := auth.RequireAuth(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req publishRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	post, err := h.timeline.Publish(r.Context(), service.PublishInput{
		CreatorID:   authCtx.UserID,
		VideoID:     req.VideoID,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, newPostResponse(post))
}
