// Package features implements the enabled_features setting of a SAIO harness
// configuration: either a sentinel (__ALL__, __NONE__, __ASK__) or an explicit
// comma-separated list of feature names.
package features

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Sentinel values accepted by enabled_features.
const (
	SentinelAll  = "__ALL__"
	SentinelNone = "__NONE__"
	SentinelAsk  = "__ASK__"
)

// Discoverer reports the feature names a live deployment advertises.
// The swift client's /info capability listing satisfies this.
type Discoverer interface {
	Capabilities(ctx context.Context) ([]string, error)
}

// Set is a parsed enabled_features value. The zero value behaves like
// __NONE__.
type Set struct {
	sentinel string
	names    map[string]struct{}
}

// Parse parses a raw enabled_features value into a Set.
func Parse(raw string) (Set, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Set{}, fmt.Errorf("enabled_features must not be empty")
	}

	switch trimmed {
	case SentinelAll, SentinelNone, SentinelAsk:
		return Set{sentinel: trimmed}, nil
	}

	if strings.HasPrefix(trimmed, "__") && strings.HasSuffix(trimmed, "__") {
		return Set{}, fmt.Errorf("unrecognized sentinel %q (expected %s, %s or %s)",
			trimmed, SentinelAll, SentinelNone, SentinelAsk)
	}

	names := make(map[string]struct{})
	for _, part := range strings.Split(trimmed, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			return Set{}, fmt.Errorf("enabled_features contains an empty entry in %q", raw)
		}
		names[name] = struct{}{}
	}
	return Set{names: names}, nil
}

// Explicit builds a Set from an explicit list of feature names.
func Explicit(names ...string) Set {
	set := Set{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		set.names[name] = struct{}{}
	}
	return set
}

// IsAll reports whether the set is the __ALL__ sentinel.
func (s Set) IsAll() bool { return s.sentinel == SentinelAll }

// IsNone reports whether the set is the __NONE__ sentinel or empty.
func (s Set) IsNone() bool {
	return s.sentinel == SentinelNone || (s.sentinel == "" && len(s.names) == 0)
}

// IsAsk reports whether the set is the __ASK__ sentinel.
func (s Set) IsAsk() bool { return s.sentinel == SentinelAsk }

// Enabled reports whether a feature is enabled. An unresolved __ASK__ set
// enables nothing; call Resolve first.
func (s Set) Enabled(name string) bool {
	switch s.sentinel {
	case SentinelAll:
		return true
	case SentinelNone, SentinelAsk:
		return false
	}
	_, ok := s.names[name]
	return ok
}

// Names returns the explicit feature names in sorted order. Sentinel sets
// return nil.
func (s Set) Names() []string {
	if s.sentinel != "" || len(s.names) == 0 {
		return nil
	}
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve turns a set into an explicit list. __ASK__ requires a discoverer
// and asks the deployment what it supports. __ALL__ resolves through the
// discoverer when one is available and is otherwise returned unchanged,
// since "everything" needs no enumeration to gate features.
func (s Set) Resolve(ctx context.Context, d Discoverer) (Set, error) {
	switch s.sentinel {
	case SentinelAsk:
		if d == nil {
			return Set{}, fmt.Errorf("enabled_features is %s but no discovery endpoint is available", SentinelAsk)
		}
		caps, err := d.Capabilities(ctx)
		if err != nil {
			return Set{}, fmt.Errorf("discovering enabled features: %w", err)
		}
		return Explicit(caps...), nil
	case SentinelAll:
		if d == nil {
			return s, nil
		}
		caps, err := d.Capabilities(ctx)
		if err != nil {
			return Set{}, fmt.Errorf("discovering enabled features: %w", err)
		}
		return Explicit(caps...), nil
	case SentinelNone:
		return Explicit(), nil
	}
	return s, nil
}

// String renders the set back into config-file form.
func (s Set) String() string {
	if s.sentinel != "" {
		return s.sentinel
	}
	if len(s.names) == 0 {
		return SentinelNone
	}
	return strings.Join(s.Names(), ",")
}

// MarshalYAML renders the set in config-file form for run plans.
func (s Set) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}
