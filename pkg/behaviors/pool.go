package behaviors

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opencafe/saiokit/pkg/swift"
)

// ResourcePool tracks resources created during a test run and tears them
// down afterwards. Release runs in reverse creation order so objects go
// before their containers. Failures are logged, not fatal: a half-cleaned
// account should not mask the test result.
type ResourcePool struct {
	log *logrus.Logger

	mu       sync.Mutex
	cleanups []cleanup
}

type cleanup struct {
	desc string
	fn   func(context.Context) error
}

// NewResourcePool creates an empty pool
func NewResourcePool(log *logrus.Logger) *ResourcePool {
	if log == nil {
		log = logrus.New()
	}
	return &ResourcePool{log: log}
}

// Add registers an arbitrary cleanup step
func (p *ResourcePool) Add(desc string, fn func(context.Context) error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cleanups = append(p.cleanups, cleanup{desc: desc, fn: fn})
}

// AddContainer registers a container for deletion on release
func (p *ResourcePool) AddContainer(client *swift.Client, name string) {
	p.Add("container "+name, func(ctx context.Context) error {
		err := client.DeleteContainer(ctx, name)
		if swift.IsNotFound(err) {
			return nil
		}
		return err
	})
}

// AddObject registers an object for deletion on release
func (p *ResourcePool) AddObject(client *swift.Client, container, name string) {
	p.Add("object "+container+"/"+name, func(ctx context.Context) error {
		err := client.DeleteObject(ctx, container, name)
		if swift.IsNotFound(err) {
			return nil
		}
		return err
	})
}

// Release tears down all tracked resources in reverse order and reports
// how many cleanups failed.
func (p *ResourcePool) Release(ctx context.Context) int {
	p.mu.Lock()
	cleanups := p.cleanups
	p.cleanups = nil
	p.mu.Unlock()

	failed := 0
	for i := len(cleanups) - 1; i >= 0; i-- {
		c := cleanups[i]
		if err := c.fn(ctx); err != nil {
			p.log.WithError(err).Warnf("cleanup failed: %s", c.desc)
			failed++
		}
	}
	return failed
}
