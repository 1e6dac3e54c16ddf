package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Headers of the v1.0 tempauth handshake.
const (
	HeaderStorageUser = "X-Storage-User"
	HeaderStoragePass = "X-Storage-Pass"
	HeaderAuthToken   = "X-Auth-Token"
	HeaderStorageURL  = "X-Storage-Url"
)

// TempAuth implements the token-based v1.0 handshake: a GET against
// {endpoint}auth/v1.0 with the user and key in headers, answered with a
// token and the account's storage URL.
type TempAuth struct {
	httpClient *http.Client
}

// TempAuthOption customizes a TempAuth strategy
type TempAuthOption func(*TempAuth)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) TempAuthOption {
	return func(t *TempAuth) {
		t.httpClient = hc
	}
}

// NewTempAuth creates the tempauth strategy
func NewTempAuth(opts ...TempAuthOption) *TempAuth {
	t := &TempAuth{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Authenticate performs the handshake
func (t *TempAuth) Authenticate(ctx context.Context, endpoint, username, password string) (*Credentials, error) {
	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid auth endpoint: %w", err)
	}
	authURL := *base
	authURL.Path = strings.TrimRight(base.Path, "/") + "/auth/v1.0"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, authURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building auth request: %w", err)
	}
	req.Header.Set(HeaderStorageUser, username)
	req.Header.Set(HeaderStoragePass, password)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth handshake against %s: %w", authURL.String(), err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("auth rejected for user %q (status %d)", username, resp.StatusCode)
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("auth handshake failed with status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	creds := &Credentials{
		Token:      resp.Header.Get(HeaderAuthToken),
		StorageURL: resp.Header.Get(HeaderStorageURL),
	}
	if creds.Token == "" {
		return nil, fmt.Errorf("auth response is missing %s", HeaderAuthToken)
	}
	if creds.StorageURL == "" {
		return nil, fmt.Errorf("auth response is missing %s", HeaderStorageURL)
	}
	return creds, nil
}
