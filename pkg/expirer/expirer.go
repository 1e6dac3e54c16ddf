// Package expirer covers both sides of object expiry in the harness: a
// cron-driven sweeper for in-process deployments and the wait budgeting the
// harness uses when checking expiry against a real deployment.
package expirer

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ErrDisabled is returned when the config carries no
// object_expirer_run_interval, meaning the deployment runs no expirer and
// expiry can never be observed.
var ErrDisabled = errors.New("expirer: no object_expirer_run_interval configured")

// Store removes objects whose scheduled expiry has passed
type Store interface {
	SweepExpired(now time.Time) int
}

// Sweeper periodically sweeps expired objects from a store
type Sweeper struct {
	store    Store
	interval time.Duration
	log      *logrus.Logger
	cron     *cron.Cron
}

// NewSweeper creates a sweeper running every interval
func NewSweeper(store Store, interval time.Duration, log *logrus.Logger) (*Sweeper, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("expirer: sweep interval must be positive, got %s", interval)
	}
	if log == nil {
		log = logrus.New()
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		log:      log,
	}, nil
}

// Start begins sweeping on the configured schedule
func (s *Sweeper) Start() error {
	if s.cron != nil {
		return errors.New("expirer: sweeper already started")
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		if removed := s.store.SweepExpired(time.Now()); removed > 0 {
			s.log.WithField("removed", removed).Debug("expirer sweep removed objects")
		}
	})
	if err != nil {
		return fmt.Errorf("expirer: scheduling sweep: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
}

// WaitBudget returns how long the harness should wait for an expired object
// to disappear: two full sweeps plus slack. A zero interval means the
// deployment runs no expirer.
func WaitBudget(interval time.Duration) (time.Duration, error) {
	if interval <= 0 {
		return 0, ErrDisabled
	}
	return 2*interval + 5*time.Second, nil
}
