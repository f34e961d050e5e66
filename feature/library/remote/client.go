package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config holds configuration for the remote media server.
type Config struct {
	// Endpoint is the base URL of the server API.
	Endpoint string `mapstructure:"endpoint" default:""`
	// ApiKey is the key sent with every request.
	ApiKey string `mapstructure:"api_key" default:""`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60"`
}

// Client fetches transient remote representations for a reconciliation
// pass. A nil asset list means the server refused to answer ("no data
// available"); the engine treats that as a no-op.
type Client interface {
	// GetUsers returns the full user list.
	GetUsers(ctx context.Context) ([]User, error)
	// GetAssets returns one user's full asset list, or nil when the
	// server reports no data available.
	GetAssets(ctx context.Context, userID string) ([]Asset, error)
	// GetAlbums returns album summaries, shared or owned.
	GetAlbums(ctx context.Context, shared bool) ([]Album, error)
	// GetAlbumDetail returns the full album including members and shared
	// users.
	GetAlbumDetail(ctx context.Context, albumID string) (*AlbumDetail, error)
}

// NewClient creates an HTTP client for the configured server.
func NewClient(cfg Config) (Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid remote endpoint: %w", err)
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 60
	}

	return &httpClient{
		base:   base,
		apiKey: cfg.ApiKey,
		http:   &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}, nil
}

type httpClient struct {
	base   *url.URL
	apiKey string
	http   *http.Client
}

func (c *httpClient) GetUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.get(ctx, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *httpClient) GetAssets(ctx context.Context, userID string) ([]Asset, error) {
	var assets []Asset
	err := c.get(ctx, "/assets", url.Values{"userId": {userID}}, &assets)
	if err != nil {
		if isNoData(err) {
			return nil, nil
		}
		return nil, err
	}
	return assets, nil
}

func (c *httpClient) GetAlbums(ctx context.Context, shared bool) ([]Album, error) {
	q := url.Values{}
	if shared {
		q.Set("shared", "true")
	}
	var albums []Album
	if err := c.get(ctx, "/albums", q, &albums); err != nil {
		return nil, err
	}
	return albums, nil
}

func (c *httpClient) GetAlbumDetail(ctx context.Context, albumID string) (*AlbumDetail, error) {
	var detail AlbumDetail
	if err := c.get(ctx, "/albums/"+url.PathEscape(albumID), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// statusError carries a non-2xx response status.
type statusError struct {
	status int
	path   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("remote returned %d for %s", e.status, e.path)
}

// isNoData reports whether the server refused with "no data available".
func isNoData(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.status == http.StatusNoContent
}

func (c *httpClient) get(ctx context.Context, path string, query url.Values, out any) error {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent ||
		resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{status: resp.StatusCode, path: path}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response %s: %w", path, err)
	}
	return nil
}
