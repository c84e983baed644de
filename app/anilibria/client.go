// Package anilibria talks to the AniLibria v1 public API and returns its
// payloads as raw records for the release transformer.
package anilibria

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lysyi3m/libria-client/app/normalize"
)

const (
	apiPath       = "/public/api/index.php"
	sessionCookie = "PHPSESSID"
	maxImageSize  = 10 << 20
)

// APIError is a failure reported by the API inside a well-formed envelope.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

// Page is one page of a list query.
type Page struct {
	Items []normalize.Record
}

type envelope struct {
	Status bool            `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	config     *Config
	httpClient *http.Client
	session    string
	imageLimit int64
}

// NewClient builds an API client. An empty session means anonymous access.
func NewClient(config *Config, session string) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: time.Duration(config.Timeout) * time.Second},
		session:    strings.TrimSpace(session),
		imageLimit: maxImageSize,
	}
}

// IsAuthorized reports whether requests carry a user session.
func (c *Client) IsAuthorized() bool {
	return c.session != ""
}

func (c *Client) GetReleases(ctx context.Context, page int) (*Page, error) {
	data, err := c.query(ctx, url.Values{
		"query":   {"list"},
		"page":    {strconv.Itoa(page)},
		"perPage": {strconv.Itoa(c.config.PerPage)},
	})
	if err != nil {
		return nil, err
	}
	return &Page{Items: normalize.Records(data, "items")}, nil
}

func (c *Client) GetRelease(ctx context.Context, id int64) (normalize.Record, error) {
	return c.query(ctx, url.Values{
		"query": {"release"},
		"id":    {strconv.FormatInt(id, 10)},
	})
}

func (c *Client) GetFavorites(ctx context.Context, page int) (*Page, error) {
	data, err := c.query(ctx, url.Values{
		"query":   {"favorites"},
		"page":    {strconv.Itoa(page)},
		"perPage": {strconv.Itoa(c.config.PerPage)},
	})
	if err != nil {
		return nil, err
	}
	return &Page{Items: normalize.Records(data, "items")}, nil
}

func (c *Client) AddToFavorites(ctx context.Context, id int64) error {
	_, err := c.query(ctx, url.Values{
		"query":  {"favorites"},
		"action": {"add"},
		"id":     {strconv.FormatInt(id, 10)},
	})
	return err
}

func (c *Client) RemoveFromFavorites(ctx context.Context, id int64) error {
	_, err := c.query(ctx, url.Values{
		"query":  {"favorites"},
		"action": {"delete"},
		"id":     {strconv.FormatInt(id, 10)},
	})
	return err
}

// PosterURL resolves a poster path against the static host.
func (c *Client) PosterURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.config.StaticURL + path
}

// GetImage downloads an image by absolute URL or static path.
func (c *Client) GetImage(ctx context.Context, src string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("image source is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.PosterURL(src), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, fmt.Errorf("content type is not an image: %s", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.imageLimit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > c.imageLimit {
		return nil, fmt.Errorf("image exceeds %d bytes", c.imageLimit)
	}

	return data, nil
}

func (c *Client) query(ctx context.Context, form url.Values) (normalize.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+apiPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: c.session})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", form.Get("query"), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !env.Status {
		if env.Error != nil {
			return nil, &APIError{Code: env.Error.Code, Message: env.Error.Message}
		}
		return nil, &APIError{Message: "request was not successful"}
	}

	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return normalize.Record{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(env.Data))
	decoder.UseNumber()

	var data any
	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response data: %w", err)
	}

	record, ok := data.(map[string]any)
	if !ok {
		// Write actions answer with scalars; callers only look for objects.
		return normalize.Record{}, nil
	}
	return record, nil
}
