// Package auth performs the authentication handshake named by the config's
// strategy key and caches the resulting tokens.
package auth

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// StrategyTempAuth is the strategy name of the reference SAIO deployment
const StrategyTempAuth = "saio_tempauth"

// Credentials is the result of a successful handshake
type Credentials struct {
	// Token authenticates subsequent storage requests via X-Auth-Token
	Token string

	// StorageURL is the account's API root
	StorageURL string
}

// Strategy authenticates a test user against a deployment
type Strategy interface {
	Authenticate(ctx context.Context, endpoint, username, password string) (*Credentials, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Strategy{}
)

// Register makes a strategy available under the given config name.
// Registering a duplicate name panics, matching the config file's
// expectation that a strategy name is unambiguous.
func Register(name string, s Strategy) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("auth: strategy %q registered twice", name))
	}
	registry[name] = s
}

// Lookup returns the strategy registered under name
func Lookup(name string) (Strategy, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown auth strategy %q (registered: %v)", name, registeredNamesLocked())
	}
	return s, nil
}

// Authenticate runs the handshake for the named strategy
func Authenticate(ctx context.Context, strategy, endpoint, username, password string) (*Credentials, error) {
	s, err := Lookup(strategy)
	if err != nil {
		return nil, err
	}
	return s.Authenticate(ctx, endpoint, username, password)
}

func registeredNamesLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(StrategyTempAuth, NewTempAuth())
}
