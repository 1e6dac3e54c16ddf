// Package mockswift is an in-process SAIO deployment: tempauth, the /info
// capability document and enough of the storage API for the harness to
// exercise itself without a real cluster.
package mockswift

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/opencafe/saiokit/pkg/expirer"
	"github.com/opencafe/saiokit/pkg/httputil"
)

// DefaultCapabilities is the capability set the mock advertises on /info
var DefaultCapabilities = []string{
	"swift", "tempauth", "tempurl", "bulk_delete", "staticweb", "slo",
}

// Options configure the mock deployment
type Options struct {
	// Users maps username to password. Defaults to the reference SAIO
	// test user.
	Users map[string]string

	// ExpirerInterval enables a scheduled expiry sweep when positive.
	// Expired objects disappear lazily on access either way.
	ExpirerInterval time.Duration

	// Capabilities override the /info capability set
	Capabilities []string

	Log *logrus.Logger
}

// Server is the mock deployment. Serve it with httptest or http.Server
// through Router.
type Server struct {
	opts  Options
	store *store
	log   *logrus.Logger

	mu     sync.Mutex
	tokens map[string]string // token -> account name

	router  *mux.Router
	sweeper *expirer.Sweeper
}

// New creates a mock deployment
func New(opts Options) (*Server, error) {
	if len(opts.Users) == 0 {
		opts.Users = map[string]string{"test:tester": "testing"}
	}
	if len(opts.Capabilities) == 0 {
		opts.Capabilities = DefaultCapabilities
	}
	if opts.Log == nil {
		opts.Log = logrus.New()
	}

	s := &Server{
		opts:   opts,
		store:  newStore(),
		log:    opts.Log,
		tokens: make(map[string]string),
	}

	if opts.ExpirerInterval > 0 {
		sweeper, err := expirer.NewSweeper(s.store, opts.ExpirerInterval, opts.Log)
		if err != nil {
			return nil, fmt.Errorf("mockswift: %w", err)
		}
		s.sweeper = sweeper
	}

	r := mux.NewRouter()
	r.HandleFunc("/auth/v1.0", s.handleAuth).Methods(http.MethodGet)
	r.HandleFunc("/info", s.handleInfo).Methods(http.MethodGet)
	r.HandleFunc("/v1/{account}", s.handleAccount).
		Methods(http.MethodGet, http.MethodHead, http.MethodPost)
	r.HandleFunc("/v1/{account}/{container}", s.handleContainer).
		Methods(http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodDelete)
	r.HandleFunc("/v1/{account}/{container}/{object:.+}", s.handleObject).
		Methods(http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodDelete)

	s.router = r
	return s, nil
}

// Router returns the deployment's HTTP handler
func (s *Server) Router() http.Handler {
	chain := httputil.RecoveryMiddleware(s.log)(s.router)
	return httputil.LoggingMiddleware(s.log)(chain)
}

// Start launches the scheduled expirer sweep, when configured
func (s *Server) Start() error {
	if s.sweeper == nil {
		return nil
	}
	return s.sweeper.Start()
}

// Stop halts the expirer sweep
func (s *Server) Stop() {
	if s.sweeper != nil {
		s.sweeper.Stop()
	}
}

// accountName derives the storage account from a tempauth username:
// "test:tester" lives in account AUTH_test.
func accountName(username string) string {
	acct := username
	if idx := strings.Index(username, ":"); idx >= 0 {
		acct = username[:idx]
	}
	return "AUTH_" + acct
}

// handleAuth implements the tempauth v1.0 handshake
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	httputil.SetStorageHeaders(w)

	user := r.Header.Get("X-Storage-User")
	pass := r.Header.Get("X-Storage-Pass")

	expected, ok := s.opts.Users[user]
	if !ok || expected != pass {
		httputil.WriteUnauthorized(w)
		return
	}

	token := "AUTH_tk" + strings.ReplaceAll(uuid.NewString(), "-", "")

	s.mu.Lock()
	s.tokens[token] = accountName(user)
	s.mu.Unlock()

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	w.Header().Set("X-Auth-Token", token)
	w.Header().Set("X-Storage-Url", fmt.Sprintf("%s://%s/v1/%s", scheme, r.Host, accountName(user)))
	w.WriteHeader(http.StatusOK)
}

// handleInfo serves the capability document
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	httputil.SetStorageHeaders(w)

	doc := make(map[string]interface{}, len(s.opts.Capabilities))
	for _, name := range s.opts.Capabilities {
		switch name {
		case "swift":
			doc[name] = map[string]interface{}{
				"version":                 "2.33.0",
				"max_object_name_length":  1024,
				"container_listing_limit": 10000,
			}
		case "tempurl":
			doc[name] = map[string]interface{}{
				"methods":         []string{"GET", "HEAD", "PUT", "POST", "DELETE"},
				"allowed_digests": []string{"sha1", "sha256"},
			}
		default:
			doc[name] = map[string]interface{}{}
		}
	}
	_ = httputil.WriteJSON(w, http.StatusOK, doc)
}

// authorized checks the request token against the account in the path
func (s *Server) authorized(r *http.Request, acctName string) bool {
	token := r.Header.Get("X-Auth-Token")
	if token == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[token] == acctName
}
