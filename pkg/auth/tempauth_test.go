package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempauthHandler(t *testing.T, user, pass string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1.0", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)

		if r.Header.Get(HeaderStorageUser) != user || r.Header.Get(HeaderStoragePass) != pass {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set(HeaderAuthToken, "AUTH_tk0123456789abcdef")
		w.Header().Set(HeaderStorageURL, "http://"+r.Host+"/v1/AUTH_test")
		w.WriteHeader(http.StatusOK)
	}
}

func TestTempAuth_Authenticate(t *testing.T) {
	srv := httptest.NewServer(tempauthHandler(t, "test:tester", "testing"))
	defer srv.Close()

	creds, err := NewTempAuth().Authenticate(context.Background(), srv.URL+"/", "test:tester", "testing")
	require.NoError(t, err)

	assert.Equal(t, "AUTH_tk0123456789abcdef", creds.Token)
	assert.Contains(t, creds.StorageURL, "/v1/AUTH_test")
}

func TestTempAuth_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(tempauthHandler(t, "test:tester", "testing"))
	defer srv.Close()

	_, err := NewTempAuth().Authenticate(context.Background(), srv.URL+"/", "test:tester", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth rejected")
}

func TestTempAuth_MissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderStorageURL, "http://example/v1/AUTH_test")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := NewTempAuth().Authenticate(context.Background(), srv.URL+"/", "u", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), HeaderAuthToken)
}

func TestAuthenticate_UnknownStrategy(t *testing.T) {
	_, err := Authenticate(context.Background(), "keystone_v3", "http://127.0.0.1:8080/", "u", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown auth strategy")
}

func TestAuthenticate_RegisteredStrategy(t *testing.T) {
	srv := httptest.NewServer(tempauthHandler(t, "test:tester", "testing"))
	defer srv.Close()

	creds, err := Authenticate(context.Background(), StrategyTempAuth, srv.URL+"/", "test:tester", "testing")
	require.NoError(t, err)
	assert.NotEmpty(t, creds.Token)
}
