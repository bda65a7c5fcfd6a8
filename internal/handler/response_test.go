package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// brokenWriter accepts headers but fails every body write.
type brokenWriter struct {
	header http.Header
	status int
}

func (w *brokenWriter) Header() http.Header       { return w.header }
func (w *brokenWriter) WriteHeader(status int)    { w.status = status }
func (w *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWriteJSON_LogsWriteFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.DebugLevel)

	r := httptest.NewRequest(http.MethodGet, "/v1/timeline", nil)
	r = r.WithContext(logger.WithContext(r.Context()))
	w := &brokenWriter{header: http.Header{}}

	writeJSON(w, r, http.StatusOK, map[string]string{"ok": "yes"})

	assert.Equal(t, http.StatusOK, w.status)
	assert.Equal(t, "application/json", w.header.Get("Content-Type"))
	assert.Contains(t, logs.String(), "failed to write response body")
	assert.Contains(t, logs.String(), "connection reset")
}

func TestWriteJSON_UnencodableValue(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.DebugLevel)

	r := httptest.NewRequest(http.MethodGet, "/v1/timeline", nil)
	r = r.WithContext(logger.WithContext(r.Context()))
	rec := httptest.NewRecorder()

	writeJSON(rec, r, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Contains(t, logs.String(), "failed to write response body")
}
