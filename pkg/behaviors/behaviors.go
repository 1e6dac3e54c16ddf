// Package behaviors layers test-harness conveniences over the raw storage
// client: random resource names, tracked cleanup, full-listing pagination
// and polling waits. Tests compose these instead of re-implementing the
// same loops.
package behaviors

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/opencafe/saiokit/pkg/swift"
)

// listPageSize caps one listing request during full pagination
const listPageSize = 1000

// bulkConcurrency caps parallel uploads in CreateTestObjects
const bulkConcurrency = 8

// Behaviors wraps a storage client with harness conveniences
type Behaviors struct {
	client *swift.Client
	log    *logrus.Logger
}

// New creates Behaviors over an authenticated client
func New(client *swift.Client, log *logrus.Logger) *Behaviors {
	if log == nil {
		log = logrus.New()
	}
	return &Behaviors{client: client, log: log}
}

// Client returns the underlying storage client
func (b *Behaviors) Client() *swift.Client {
	return b.client
}

// RandName builds a collision-resistant resource name with the given
// prefix, safe to create in a shared account.
func RandName(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	if prefix == "" {
		return suffix
	}
	return prefix + "_" + suffix
}

// CreateTestContainer creates a randomly named container and registers it
// for cleanup.
func (b *Behaviors) CreateTestContainer(ctx context.Context, pool *ResourcePool, prefix string) (string, error) {
	name := RandName(prefix)
	if err := b.client.CreateContainer(ctx, name, nil); err != nil {
		return "", fmt.Errorf("creating test container: %w", err)
	}
	pool.AddContainer(b.client, name)
	b.log.WithField("container", name).Debug("created test container")
	return name, nil
}

// CreateTestObject uploads an object with generated content and registers
// it for cleanup. Returns the object name.
func (b *Behaviors) CreateTestObject(ctx context.Context, pool *ResourcePool, container, prefix string, data []byte) (string, error) {
	name := RandName(prefix)
	if data == nil {
		data = []byte("saiokit test object " + name)
	}
	if _, err := b.client.PutObject(ctx, container, name, data, nil); err != nil {
		return "", fmt.Errorf("creating test object: %w", err)
	}
	pool.AddObject(b.client, container, name)
	return name, nil
}

// CreateTestObjects uploads count objects concurrently, registering each
// for cleanup. Returns the created names in no particular order.
func (b *Behaviors) CreateTestObjects(ctx context.Context, pool *ResourcePool, container, prefix string, count int) ([]string, error) {
	names := make([]string, count)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkConcurrency)
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			name, err := b.CreateTestObject(ctx, pool, container, prefix, nil)
			if err != nil {
				return err
			}
			names[i] = name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return names, nil
}

// ListAllObjects follows listing markers until the container is exhausted
func (b *Behaviors) ListAllObjects(ctx context.Context, container string, opts swift.ListOptions) ([]swift.ObjectEntry, error) {
	opts.Limit = listPageSize

	var all []swift.ObjectEntry
	for {
		page, err := b.client.Objects(ctx, container, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < listPageSize {
			return all, nil
		}
		opts.Marker = page[len(page)-1].Name
	}
}

// ListAllContainers follows listing markers until the account is exhausted
func (b *Behaviors) ListAllContainers(ctx context.Context, opts swift.ListOptions) ([]swift.ContainerEntry, error) {
	opts.Limit = listPageSize

	var all []swift.ContainerEntry
	for {
		page, err := b.client.Containers(ctx, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < listPageSize {
			return all, nil
		}
		opts.Marker = page[len(page)-1].Name
	}
}

// FindContainer returns the first container whose name starts with prefix,
// or swift's not-found error when none matches.
func (b *Behaviors) FindContainer(ctx context.Context, prefix string) (*swift.ContainerEntry, error) {
	entries, err := b.ListAllContainers(ctx, swift.ListOptions{Prefix: prefix})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no container with prefix %q", prefix)
	}
	return &entries[0], nil
}

// ExpectedObject describes what an uploaded object should look like
type ExpectedObject struct {
	ETag          string
	ContentType   string
	ContentLength int64
	Metadata      map[string]string
}

// ValidateObject stats an object and collects every mismatch against the
// expectation, so a test failure reports all problems at once.
func (b *Behaviors) ValidateObject(ctx context.Context, container, name string, want ExpectedObject) []error {
	info, err := b.client.StatObject(ctx, container, name)
	if err != nil {
		return []error{err}
	}

	var problems []error
	if want.ETag != "" && info.ETag != want.ETag {
		problems = append(problems, fmt.Errorf("etag: want %s, got %s", want.ETag, info.ETag))
	}
	if want.ContentType != "" && info.ContentType != want.ContentType {
		problems = append(problems, fmt.Errorf("content type: want %s, got %s", want.ContentType, info.ContentType))
	}
	if want.ContentLength > 0 && info.ContentLength != want.ContentLength {
		problems = append(problems, fmt.Errorf("content length: want %d, got %d", want.ContentLength, info.ContentLength))
	}
	for k, v := range want.Metadata {
		if got := info.Metadata[k]; got != v {
			problems = append(problems, fmt.Errorf("metadata %s: want %q, got %q", k, v, got))
		}
	}
	return problems
}
