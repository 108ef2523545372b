package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jiahe-site/models"
)

// Client talks to a remote store endpoint over HTTP.
type Client struct {
	url   string
	token string
	http  *http.Client
}

func NewClient(url, token string, timeout time.Duration) *Client {
	return &Client{
		url:   url,
		token: token,
		http:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// Fetch reads the whole document. Non-2xx answers, bodies with an "error"
// field and bodies without "news" are errors.
func (c *Client) Fetch(ctx context.Context) (*models.SiteData, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, 0, fmt.Errorf("store GET %s: status %d: %s", c.url, resp.StatusCode, string(body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}

	data, err := DecodeSiteData(raw)
	if err != nil {
		return nil, 0, err
	}
	return data, parseVersion(resp.Header.Get(VersionHeader)), nil
}

// Replace sends the complete model. The store's {success, message} answer
// is returned as is, whatever the status code; an error means no usable
// answer arrived.
func (c *Client) Replace(ctx context.Context, data *models.SiteData, baseVersion int64) (*models.StoreResult, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)
	if baseVersion > 0 {
		req.Header.Set(VersionHeader, formatVersion(baseVersion))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result models.StoreResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("store PUT %s: status %d: unreadable answer: %w", c.url, resp.StatusCode, err)
	}
	if result.Version == 0 {
		result.Version = parseVersion(resp.Header.Get(VersionHeader))
	}
	return &result, nil
}
