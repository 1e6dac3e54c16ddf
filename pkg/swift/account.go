package swift

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Account metadata header names used by tempurl signing.
const (
	HeaderTempURLKey  = "X-Account-Meta-Temp-Url-Key"
	HeaderTempURLKey2 = "X-Account-Meta-Temp-Url-Key-2"
)

// AccountInfo summarizes a HEAD on the account
type AccountInfo struct {
	ContainerCount int64
	ObjectCount    int64
	BytesUsed      int64

	// Metadata holds X-Account-Meta-* values with lowercased names
	Metadata map[string]string
}

// TempURLKeys returns the configured tempurl signing keys, primary first.
// Unset keys are omitted.
func (a *AccountInfo) TempURLKeys() [][]byte {
	var keys [][]byte
	if k := a.Metadata["temp-url-key"]; k != "" {
		keys = append(keys, []byte(k))
	}
	if k := a.Metadata["temp-url-key-2"]; k != "" {
		keys = append(keys, []byte(k))
	}
	return keys
}

// Account fetches the account summary via HEAD
func (c *Client) Account(ctx context.Context) (*AccountInfo, error) {
	resp, err := c.do(ctx, http.MethodHead, c.url("", "", nil), nil, nil, http.StatusNoContent, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("reading account: %w", err)
	}
	defer resp.Body.Close()

	info := &AccountInfo{
		ContainerCount: headerInt64(resp.Header, "X-Account-Container-Count"),
		ObjectCount:    headerInt64(resp.Header, "X-Account-Object-Count"),
		BytesUsed:      headerInt64(resp.Header, "X-Account-Bytes-Used"),
		Metadata:       metadataFromHeaders(resp.Header, accountMetaPrefix),
	}
	return info, nil
}

// UpdateAccountMetadata posts X-Account-Meta-* headers. An empty value
// removes the item.
func (c *Client) UpdateAccountMetadata(ctx context.Context, meta map[string]string) error {
	headers := metadataHeaders(accountMetaPrefix, meta)
	resp, err := c.do(ctx, http.MethodPost, c.url("", "", nil), headers, nil, http.StatusNoContent, http.StatusAccepted)
	if err != nil {
		return fmt.Errorf("updating account metadata: %w", err)
	}
	resp.Body.Close()
	return nil
}

// SetTempURLKey stores a tempurl signing key on the account. Pass second
// to set the rotation key.
func (c *Client) SetTempURLKey(ctx context.Context, key string, second bool) error {
	name := "temp-url-key"
	if second {
		name = "temp-url-key-2"
	}
	return c.UpdateAccountMetadata(ctx, map[string]string{name: key})
}

// TempURLKeys fetches the account's tempurl signing keys, primary first
func (c *Client) TempURLKeys(ctx context.Context) ([][]byte, error) {
	info, err := c.Account(ctx)
	if err != nil {
		return nil, err
	}
	return info.TempURLKeys(), nil
}

// ContainerEntry is one row of an account listing
type ContainerEntry struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
	Bytes int64  `json:"bytes"`
}

// ListOptions control listing pagination and filtering
type ListOptions struct {
	Marker    string
	EndMarker string
	Prefix    string
	Limit     int
}

func (o ListOptions) query() url.Values {
	q := url.Values{"format": []string{"json"}}
	if o.Marker != "" {
		q.Set("marker", o.Marker)
	}
	if o.EndMarker != "" {
		q.Set("end_marker", o.EndMarker)
	}
	if o.Prefix != "" {
		q.Set("prefix", o.Prefix)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	return q
}

// Containers lists containers in the account
func (c *Client) Containers(ctx context.Context, opts ListOptions) ([]ContainerEntry, error) {
	resp, err := c.do(ctx, http.MethodGet, c.url("", "", opts.query()), nil, nil, http.StatusOK, http.StatusNoContent)
	if err != nil {
		return nil, fmt.Errorf("listing containers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var entries []ContainerEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding container listing: %w", err)
	}
	return entries, nil
}

func headerInt64(h http.Header, name string) int64 {
	n, err := strconv.ParseInt(h.Get(name), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
