package status

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsweep/dispatchd/internal/auth"
	"github.com/netsweep/dispatchd/internal/logging"
)

type fakeReporter struct{ snap Snapshot }

func (f fakeReporter) StatusSnapshot() Snapshot { return f.snap }

func TestHandleHealthzAlwaysOK(t *testing.T) {
	s := New(Config{Enabled: true, Host: "127.0.0.1", Port: 0}, fakeReporter{}, nil, logging.GetLogger("status-test"))

	rec := httptest.NewRecorder()
	s.handleHealthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleReadyzReflectsReadyFlag(t *testing.T) {
	s := New(Config{Enabled: true}, fakeReporter{snap: Snapshot{Ready: false}}, nil, logging.GetLogger("status-test"))

	rec := httptest.NewRecorder()
	s.handleReadyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleDetailedStatusRequiresBearerWhenAuthConfigured(t *testing.T) {
	handler, err := auth.NewHandler("secret", nil)
	require.NoError(t, err)
	s := New(Config{Enabled: true}, fakeReporter{snap: Snapshot{Running: true}}, handler, logging.GetLogger("status-test"))

	rec := httptest.NewRecorder()
	s.handleDetailedStatus(rec, httptest.NewRequest(http.MethodGet, "/status/detailed", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := handler.IssueToken("operator", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/status/detailed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec2 := httptest.NewRecorder()
	s.handleDetailedStatus(rec2, req)
	assert.Equal(t, http.StatusOK, rec2.Code)
}
