package httputil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetStorageHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SetStorageHeaders(rec)

	transID := rec.Header().Get("X-Trans-Id")
	assert.True(t, strings.HasPrefix(transID, "tx"))
	assert.Len(t, transID, 23)

	ts := rec.Header().Get("X-Timestamp")
	secs, err := strconv.ParseFloat(ts, 64)
	require.NoError(t, err)
	assert.InDelta(t, float64(time.Now().Unix()), secs, 5)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "bad marker")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "bad marker\n", rec.Body.String())
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rec, http.StatusOK, []string{"a", "b"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `["a","b"]`, rec.Body.String())
}

func TestRecoveryMiddleware(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	handler := RecoveryMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/AUTH_test", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLoggingMiddleware_PassesThrough(t *testing.T) {
	handler := LoggingMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/AUTH_test", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
}
