package mockswift

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"
)

// object is a stored object and its system state
type object struct {
	data         []byte
	etag         string
	contentType  string
	meta         map[string]string
	lastModified time.Time
	deleteAt     time.Time // zero means never
}

func (o *object) expired(now time.Time) bool {
	return !o.deleteAt.IsZero() && !now.Before(o.deleteAt)
}

// container holds objects and user metadata
type container struct {
	meta    map[string]string
	objects map[string]*object
}

func (c *container) bytesUsed() int64 {
	var total int64
	for _, o := range c.objects {
		total += int64(len(o.data))
	}
	return total
}

// account holds containers and user metadata
type account struct {
	meta       map[string]string
	containers map[string]*container
}

// store is the in-memory state behind the mock deployment
type store struct {
	mu       sync.Mutex
	accounts map[string]*account
}

func newStore() *store {
	return &store{accounts: make(map[string]*account)}
}

// ensureAccount returns the account, creating it on first touch the way
// tempauth-backed deployments do.
func (s *store) ensureAccount(name string) *account {
	acct, ok := s.accounts[name]
	if !ok {
		acct = &account{
			meta:       make(map[string]string),
			containers: make(map[string]*container),
		}
		s.accounts[name] = acct
	}
	return acct
}

// putObject stores object content and returns its etag
func (c *container) putObject(name string, data []byte, contentType string, meta map[string]string, deleteAt time.Time) *object {
	sum := md5.Sum(data)
	obj := &object{
		data:         append([]byte(nil), data...),
		etag:         hex.EncodeToString(sum[:]),
		contentType:  contentType,
		meta:         meta,
		lastModified: time.Now().UTC(),
		deleteAt:     deleteAt,
	}
	c.objects[name] = obj
	return obj
}

// SweepExpired removes every expired object across all accounts. It is the
// expirer.Store implementation backing the scheduled sweeper.
func (s *store) SweepExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, acct := range s.accounts {
		for _, cont := range acct.containers {
			for name, obj := range cont.objects {
				if obj.expired(now) {
					delete(cont.objects, name)
					removed++
				}
			}
		}
	}
	return removed
}

// listingFilter applies marker/end_marker/prefix/limit semantics to a
// sorted name list.
type listingFilter struct {
	marker    string
	endMarker string
	prefix    string
	limit     int
}

func (f listingFilter) apply(names []string) []string {
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		if f.marker != "" && name <= f.marker {
			continue
		}
		if f.endMarker != "" && name >= f.endMarker {
			break
		}
		if f.prefix != "" && !strings.HasPrefix(name, f.prefix) {
			continue
		}
		out = append(out, name)
		if f.limit > 0 && len(out) == f.limit {
			break
		}
	}
	return out
}
