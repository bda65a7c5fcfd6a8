package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/vidfeed/internal/auth"
	"github.com/prn-tf/vidfeed/internal/service"
)

// VideoHandler starts uploads and serves uploaded videos.
type VideoHandler struct {
	videos *service.VideoService
	logger zerolog.Logger
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(videos *service.VideoService, logger zerolog.Logger) *VideoHandler {
	return &VideoHandler{
		videos: videos,
		logger: logger.With().Str("handler", "video").Logger(),
	}
}

// StartUpload handles POST /v1/videos. The response carries the video id and
// the form fields the client posts directly to object storage.
func (h *VideoHandler) StartUpload(w http.ResponseWriter, r *http.Request) {
	authCtx, err := auth.RequireAuth(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	upload, err := h.videos.StartUpload(r.Context(), authCtx.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, upload)
}

// GetVideo handles GET /v1/videos/{id}.
func (h *VideoHandler) GetVideo(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireAuth(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	body, err := h.videos.GetVideo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(body))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Debug().Err(err).Msg("client went away while streaming video")
	}
}
