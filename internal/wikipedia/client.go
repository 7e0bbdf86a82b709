// Package wikipedia fetches article length and pageview counts from the
// MediaWiki Action API and the Wikimedia REST metrics API.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config holds the client settings. APIBaseFormat takes the language code;
// zero values fall back to the public Wikimedia hosts.
type Config struct {
	APIBaseFormat string
	RestBase      string
	UserAgent     string
	Timeout       time.Duration
}

const (
	defaultAPIBaseFormat = "https://%s.wikipedia.org/w/api.php"
	defaultRestBase      = "https://wikimedia.org/api/rest_v1"
)

type Client struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIBaseFormat == "" {
		cfg.APIBaseFormat = defaultAPIBaseFormat
	}
	if cfg.RestBase == "" {
		cfg.RestBase = defaultRestBase
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// ArticleLength returns the article's size in bytes via the Action API's
// prop=info, which follows redirects. A missing page yields 0.
func (c *Client) ArticleLength(ctx context.Context, lang, title string) (int, error) {
	if title == "" {
		return 0, nil
	}
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("prop", "info")
	params.Set("titles", title)
	params.Set("redirects", "1")

	base := fmt.Sprintf(c.cfg.APIBaseFormat, lang)
	raw, status, err := c.get(ctx, base+"?"+params.Encode())
	if err != nil {
		return 0, err
	}
	if status/100 != 2 {
		return 0, fmt.Errorf("wikipedia: non-2xx status %d", status)
	}

	var res struct {
		Query struct {
			Pages []struct {
				Missing bool `json:"missing"`
				Length  int  `json:"length"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return 0, fmt.Errorf("decode info response: %w", err)
	}
	if len(res.Query.Pages) == 0 || res.Query.Pages[0].Missing {
		return 0, nil
	}
	return res.Query.Pages[0].Length, nil
}

// Pageviews sums monthly per-article pageviews over [start, end], both in
// YYYYMMDD form. A 404 means the article has no view history and yields 0.
func (c *Client) Pageviews(ctx context.Context, lang, title, start, end string) (int64, error) {
	if title == "" {
		return 0, nil
	}
	article := url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	u := fmt.Sprintf("%s/metrics/pageviews/per-article/%s.wikipedia/all-access/all-agents/%s/monthly/%s/%s",
		c.cfg.RestBase, lang, article, start, end)

	raw, status, err := c.get(ctx, u)
	if err != nil {
		return 0, err
	}
	if status == http.StatusNotFound {
		return 0, nil
	}
	if status/100 != 2 {
		return 0, fmt.Errorf("pageviews: non-2xx status %d", status)
	}

	var res struct {
		Items []struct {
			Views int64 `json:"views"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return 0, fmt.Errorf("decode pageviews response: %w", err)
	}
	var total int64
	for _, item := range res.Items {
		total += item.Views
	}
	return total, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	reqID := uuid.New().String()
	startAt := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("wikipedia.http.send_error",
			"req_id", reqID, "error", err, "elapsed_ms", time.Since(startAt).Milliseconds())
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(resp.Body)
	c.logger.Debug("wikipedia.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(startAt).Milliseconds(),
	)
	return raw, resp.StatusCode, nil
}
