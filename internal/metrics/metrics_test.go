package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.UploadGrant(UploadIssued)
	m.UploadGrant(UploadIssued)
	m.UploadGrant(UploadDenied)
	m.TimelineCache(CacheHit)
	m.Registration()
	m.CredentialResolution(5 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.uploadGrants.WithLabelValues(UploadIssued)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploadGrants.WithLabelValues(UploadDenied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.timelineCache.WithLabelValues(CacheHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrations))
	assert.Equal(t, 1, testutil.CollectAndCount(m.credentialDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.UploadGrant(UploadFailed)
		m.TimelineCache(CacheMiss)
		m.Registration()
		m.CredentialResolution(time.Second)
	})
}

func TestMetrics_Middleware(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/v1/videos/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/videos/abc", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/v1/videos/{id}", "404")))

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), "vidfeed_http_requests_total"))
}
