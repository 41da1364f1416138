package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"streamix/models"
)

var (
	ErrNotConfigured = errors.New("catalog portal not configured")
	ErrUnauthorized  = errors.New("catalog rejected credentials")
)

// Client talks to an Xtream-compatible portal through its player_api.php
// endpoint. Transient failures (network errors, 5xx) are retried with
// backoff; authentication failures are not.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	retries    uint
}

// NewClient builds a portal client. timeout and retries fall back to sane
// values when zero.
func NewClient(baseURL, username, password string, timeout time.Duration, retries int) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if retries <= 0 {
		retries = 3
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		retries:    uint(retries),
	}
}

// Configured reports whether the client has portal credentials.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.username != ""
}

// Login performs the account handshake and returns account status.
func (c *Client) Login(ctx context.Context) (*models.LoginResponse, error) {
	var out models.LoginResponse
	if err := c.getJSON(ctx, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories lists the browsable groupings for one catalog half.
func (c *Client) Categories(ctx context.Context, kind models.CatalogKind) ([]models.Category, error) {
	action, err := categoryAction(kind)
	if err != nil {
		return nil, err
	}
	var out []models.Category
	if err := c.getJSON(ctx, action, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LiveStreams lists channels, optionally scoped to a category.
func (c *Client) LiveStreams(ctx context.Context, categoryID string) ([]models.LiveStream, error) {
	var out []models.LiveStream
	if err := c.getJSON(ctx, "get_live_streams", categoryParams(categoryID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// VodStreams lists movies, optionally scoped to a category.
func (c *Client) VodStreams(ctx context.Context, categoryID string) ([]models.VodStream, error) {
	var out []models.VodStream
	if err := c.getJSON(ctx, "get_vod_streams", categoryParams(categoryID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SeriesList lists series entries, optionally scoped to a category.
func (c *Client) SeriesList(ctx context.Context, categoryID string) ([]models.Series, error) {
	var out []models.Series
	if err := c.getJSON(ctx, "get_series", categoryParams(categoryID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SeriesInfo fetches the seasons and episodes of one series.
func (c *Client) SeriesInfo(ctx context.Context, seriesID int) (*models.SeriesInfo, error) {
	params := url.Values{}
	params.Set("series_id", strconv.Itoa(seriesID))
	var out models.SeriesInfo
	if err := c.getJSON(ctx, "get_series_info", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StreamURL builds the direct playback URL for a stream.
func (c *Client) StreamURL(kind models.CatalogKind, streamID int, containerExtension string) string {
	if c.baseURL == "" {
		return ""
	}
	id := strconv.Itoa(streamID)
	switch kind {
	case models.KindLive:
		return fmt.Sprintf("%s/live/%s/%s/%s.m3u8", c.baseURL, c.username, c.password, id)
	case models.KindSeries:
		return fmt.Sprintf("%s/series/%s/%s/%s.%s", c.baseURL, c.username, c.password, id, orExt(containerExtension))
	default:
		return fmt.Sprintf("%s/movie/%s/%s/%s.%s", c.baseURL, c.username, c.password, id, orExt(containerExtension))
	}
}

func orExt(ext string) string {
	if ext == "" {
		return "mp4"
	}
	return ext
}

func categoryAction(kind models.CatalogKind) (string, error) {
	switch kind {
	case models.KindLive:
		return "get_live_categories", nil
	case models.KindVod:
		return "get_vod_categories", nil
	case models.KindSeries:
		return "get_series_categories", nil
	default:
		return "", fmt.Errorf("unknown catalog kind %q", kind)
	}
}

func categoryParams(categoryID string) url.Values {
	if categoryID == "" {
		return nil
	}
	params := url.Values{}
	params.Set("category_id", categoryID)
	return params
}

func (c *Client) getJSON(ctx context.Context, action string, params url.Values, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	query := url.Values{}
	query.Set("username", c.username)
	query.Set("password", c.password)
	if action != "" {
		query.Set("action", action)
	}
	for key, vals := range params {
		for _, v := range vals {
			query.Add(key, v)
		}
	}
	endpoint := c.baseURL + "/player_api.php?" + query.Encode()

	body, err := retry.DoWithData(
		func() ([]byte, error) {
			return c.fetch(ctx, endpoint)
		},
		retry.Context(ctx),
		retry.Attempts(c.retries),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, ErrUnauthorized)
		}),
	)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", actionName(action), err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("portal request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("portal returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read portal response: %w", err)
	}
	return body, nil
}

func actionName(action string) string {
	if action == "" {
		return "login"
	}
	return action
}
