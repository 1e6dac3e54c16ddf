package swift

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// PutOptions configure an object upload
type PutOptions struct {
	ContentType string

	// DeleteAt schedules the object for expiry at an absolute time
	DeleteAt time.Time

	// DeleteAfter schedules expiry relative to upload time. Ignored when
	// DeleteAt is set.
	DeleteAfter time.Duration

	Metadata map[string]string
}

// ObjectInfo summarizes an object's response headers
type ObjectInfo struct {
	ETag          string
	ContentLength int64
	ContentType   string
	LastModified  time.Time

	// DeleteAt is the scheduled expiry, zero when none is set
	DeleteAt time.Time

	// Metadata holds X-Object-Meta-* values with lowercased names
	Metadata map[string]string
}

// PutObject uploads an object and verifies the returned ETag against the
// local MD5, catching corruption in transit.
func (c *Client) PutObject(ctx context.Context, container, name string, data []byte, opts *PutOptions) (string, error) {
	if opts == nil {
		opts = &PutOptions{}
	}

	sum := md5.Sum(data)
	etag := hex.EncodeToString(sum[:])

	headers := metadataHeaders(objectMetaPrefix, opts.Metadata)
	headers.Set("ETag", etag)
	if opts.ContentType != "" {
		headers.Set("Content-Type", opts.ContentType)
	}
	switch {
	case !opts.DeleteAt.IsZero():
		headers.Set(HeaderDeleteAt, strconv.FormatInt(opts.DeleteAt.Unix(), 10))
	case opts.DeleteAfter > 0:
		headers.Set(HeaderDeleteAfter, strconv.Itoa(int(opts.DeleteAfter/time.Second)))
	}

	resp, err := c.do(ctx, http.MethodPut, c.url(container, name, nil), headers,
		bytes.NewReader(data), http.StatusCreated)
	if err != nil {
		return "", fmt.Errorf("uploading %s/%s: %w", container, name, err)
	}
	resp.Body.Close()

	if got := strings.Trim(resp.Header.Get("Etag"), `"`); got != "" && got != etag {
		return "", fmt.Errorf("uploading %s/%s: etag mismatch: sent %s, got %s", container, name, etag, got)
	}
	return etag, nil
}

// GetObject downloads an object's content and headers
func (c *Client) GetObject(ctx context.Context, container, name string) ([]byte, *ObjectInfo, error) {
	resp, err := c.do(ctx, http.MethodGet, c.url(container, name, nil), nil, nil, http.StatusOK)
	if err != nil {
		return nil, nil, fmt.Errorf("downloading %s/%s: %w", container, name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s/%s: %w", container, name, err)
	}
	return data, objectInfoFromHeaders(resp.Header), nil
}

// StatObject fetches an object's headers via HEAD
func (c *Client) StatObject(ctx context.Context, container, name string) (*ObjectInfo, error) {
	resp, err := c.do(ctx, http.MethodHead, c.url(container, name, nil), nil, nil, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("stat %s/%s: %w", container, name, err)
	}
	resp.Body.Close()
	return objectInfoFromHeaders(resp.Header), nil
}

// UpdateObjectMetadata replaces the object's user metadata via POST
func (c *Client) UpdateObjectMetadata(ctx context.Context, container, name string, meta map[string]string) error {
	headers := metadataHeaders(objectMetaPrefix, meta)
	resp, err := c.do(ctx, http.MethodPost, c.url(container, name, nil), headers, nil,
		http.StatusAccepted, http.StatusNoContent)
	if err != nil {
		return fmt.Errorf("updating %s/%s metadata: %w", container, name, err)
	}
	resp.Body.Close()
	return nil
}

// DeleteObject removes an object
func (c *Client) DeleteObject(ctx context.Context, container, name string) error {
	resp, err := c.do(ctx, http.MethodDelete, c.url(container, name, nil), nil, nil, http.StatusNoContent)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", container, name, err)
	}
	resp.Body.Close()
	return nil
}

func objectInfoFromHeaders(h http.Header) *ObjectInfo {
	info := &ObjectInfo{
		ETag:          strings.Trim(h.Get("Etag"), `"`),
		ContentLength: headerInt64(h, "Content-Length"),
		ContentType:   h.Get("Content-Type"),
		Metadata:      metadataFromHeaders(h, objectMetaPrefix),
	}
	if lm := h.Get("Last-Modified"); lm != "" {
		if t, err := time.Parse(http.TimeFormat, lm); err == nil {
			info.LastModified = t
		}
	}
	if da := h.Get(HeaderDeleteAt); da != "" {
		if secs, err := strconv.ParseInt(da, 10, 64); err == nil {
			info.DeleteAt = time.Unix(secs, 0)
		}
	}
	return info
}
