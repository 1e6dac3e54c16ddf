package swift

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ContainerInfo summarizes a HEAD on a container
type ContainerInfo struct {
	ObjectCount int64
	BytesUsed   int64

	// Metadata holds X-Container-Meta-* values with lowercased names
	Metadata map[string]string
}

// ObjectEntry is one row of a container listing
type ObjectEntry struct {
	Name         string `json:"name"`
	Hash         string `json:"hash"`
	Bytes        int64  `json:"bytes"`
	ContentType  string `json:"content_type"`
	LastModified string `json:"last_modified"`
}

// CreateContainer creates a container, optionally with initial metadata.
// Creating an existing container is not an error.
func (c *Client) CreateContainer(ctx context.Context, name string, meta map[string]string) error {
	headers := metadataHeaders(containerMetaPrefix, meta)
	resp, err := c.do(ctx, http.MethodPut, c.url(name, "", nil), headers, nil,
		http.StatusCreated, http.StatusAccepted)
	if err != nil {
		return fmt.Errorf("creating container %q: %w", name, err)
	}
	resp.Body.Close()
	return nil
}

// Container fetches a container summary via HEAD
func (c *Client) Container(ctx context.Context, name string) (*ContainerInfo, error) {
	resp, err := c.do(ctx, http.MethodHead, c.url(name, "", nil), nil, nil,
		http.StatusNoContent, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("reading container %q: %w", name, err)
	}
	defer resp.Body.Close()

	return &ContainerInfo{
		ObjectCount: headerInt64(resp.Header, "X-Container-Object-Count"),
		BytesUsed:   headerInt64(resp.Header, "X-Container-Bytes-Used"),
		Metadata:    metadataFromHeaders(resp.Header, containerMetaPrefix),
	}, nil
}

// UpdateContainerMetadata posts X-Container-Meta-* headers
func (c *Client) UpdateContainerMetadata(ctx context.Context, name string, meta map[string]string) error {
	headers := metadataHeaders(containerMetaPrefix, meta)
	resp, err := c.do(ctx, http.MethodPost, c.url(name, "", nil), headers, nil,
		http.StatusNoContent, http.StatusAccepted)
	if err != nil {
		return fmt.Errorf("updating container %q metadata: %w", name, err)
	}
	resp.Body.Close()
	return nil
}

// Objects lists objects in a container
func (c *Client) Objects(ctx context.Context, container string, opts ListOptions) ([]ObjectEntry, error) {
	resp, err := c.do(ctx, http.MethodGet, c.url(container, "", opts.query()), nil, nil,
		http.StatusOK, http.StatusNoContent)
	if err != nil {
		return nil, fmt.Errorf("listing container %q: %w", container, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var entries []ObjectEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding object listing for %q: %w", container, err)
	}
	return entries, nil
}

// DeleteContainer removes an empty container. Deleting a non-empty
// container yields a 409 visible through IsConflict.
func (c *Client) DeleteContainer(ctx context.Context, name string) error {
	resp, err := c.do(ctx, http.MethodDelete, c.url(name, "", nil), nil, nil, http.StatusNoContent)
	if err != nil {
		return fmt.Errorf("deleting container %q: %w", name, err)
	}
	resp.Body.Close()
	return nil
}
