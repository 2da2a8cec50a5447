// Package devto wraps the DEV.to REST API for a single authenticated author.
//
// Every call is a live round trip; there is no caching and no retry here.
// Retrying delivery is the poster's job, and fetch failures surface once.
package devto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"blogbot/pkg/logx"
)

const defaultBaseURL = "https://dev.to/api"

// Article statuses accepted by the listing endpoint.
const (
	StatusPublished   = "published"
	StatusUnpublished = "unpublished"
	StatusAll         = "all"
)

// Article is the subset of the DEV.to article record blogbot cares about.
// Owned by the publishing service; read-only from our side.
type Article struct {
	ID                 int64    `json:"id"`
	Title              string   `json:"title"`
	URL                string   `json:"url"`
	Description        string   `json:"description,omitempty"`
	PublishedAt        string   `json:"published_at,omitempty"`
	TagList            []string `json:"tag_list,omitempty"`
	ReadingTimeMinutes int      `json:"reading_time_minutes,omitempty"`
	CoverImage         string   `json:"cover_image,omitempty"`
	User               User     `json:"user,omitempty"`
}

type User struct {
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
}

// Draft is the payload for creating a new article. Used only by tooling.
type Draft struct {
	Title        string   `json:"title"`
	BodyMarkdown string   `json:"body_markdown"`
	Tags         []string `json:"tags,omitempty"`
	Published    bool     `json:"published"`
}

// APIError is returned when DEV.to answers with a non-success status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dev.to api: status %d: %s", e.StatusCode, e.Body)
}

type Config struct {
	APIKey  string
	BaseURL string        // override for tests; empty means the public API
	Timeout time.Duration // per-request; 0 means 30s
}

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     logx.Logger
}

func New(cfg Config, log logx.Logger) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Articles lists the authenticated user's articles with the given status.
func (c *Client) Articles(ctx context.Context, status string) ([]Article, error) {
	switch status {
	case StatusPublished, StatusUnpublished, StatusAll:
	default:
		return nil, fmt.Errorf("invalid article status %q (want %s, %s or %s)",
			status, StatusPublished, StatusUnpublished, StatusAll)
	}

	var articles []Article
	if err := c.get(ctx, "/articles/me/"+status, &articles); err != nil {
		return nil, err
	}
	c.log.Debug("fetched articles", logx.String("status", status), logx.Int("count", len(articles)))
	return articles, nil
}

// Latest returns the article with the newest published_at, or nil when the
// account has no articles. The comparison is a plain string compare, which
// is correct for ISO-8601 timestamps; ties keep API order (stable sort).
func (c *Client) Latest(ctx context.Context, status string) (*Article, error) {
	articles, err := c.Articles(ctx, status)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, nil
	}
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt > articles[j].PublishedAt
	})
	return &articles[0], nil
}

// Article fetches one article by id.
func (c *Client) Article(ctx context.Context, id int64) (*Article, error) {
	var a Article
	if err := c.get(ctx, fmt.Sprintf("/articles/%d", id), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create publishes a new article. Used only by out-of-band tooling, never by
// the poll loop.
func (c *Client) Create(ctx context.Context, d Draft) (*Article, error) {
	payload := struct {
		Article Draft `json:"article"`
	}{Article: d}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/articles", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var a Article
	if err := json.Unmarshal(body, &a); err != nil {
		return nil, fmt.Errorf("decode created article: %w", err)
	}
	return &a, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
