package swift

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
)

// Info fetches the deployment's /info capability document. The endpoint
// lives at the cluster root, not below the storage URL, and needs no token.
func (c *Client) Info(ctx context.Context) (map[string]json.RawMessage, error) {
	u := *c.storageURL
	u.Path = "/info"
	u.RawQuery = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building info request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching /info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Method: http.MethodGet, URL: u.String()}
	}

	var doc map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding /info: %w", err)
	}
	return doc, nil
}

// Capabilities returns the sorted capability names from /info. This is the
// discovery side of the __ASK__ feature sentinel.
func (c *Client) Capabilities(ctx context.Context) ([]string, error) {
	doc, err := c.Info(ctx)
	if err != nil {
		return nil, err
	}

	caps := make([]string, 0, len(doc))
	for name := range doc {
		caps = append(caps, name)
	}
	sort.Strings(caps)
	return caps, nil
}
