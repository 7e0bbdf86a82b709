// Package wikidata is a read-only client for the Wikidata SPARQL endpoint and
// entity API, used to attach Q-codes to rows by name.
package wikidata

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

// Config holds the client settings. Zero values fall back to the public
// Wikidata endpoints.
type Config struct {
	Endpoint  string
	EntityAPI string
	UserAgent string
	Timeout   time.Duration
}

const (
	defaultEndpoint  = "https://query.wikidata.org/sparql"
	defaultEntityAPI = "https://www.wikidata.org/w/api.php"
)

type Client struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.EntityAPI == "" {
		cfg.EntityAPI = defaultEntityAPI
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

// Entity is one search result.
type Entity struct {
	QCode     string
	Label     string
	BirthDate string
}

// searchQuery matches humans carrying the given name as a Finnish label or
// alias and returns at most one, with its label and birth date when present.
const searchQuery = `
SELECT ?person ?personLabel ?birthDate WHERE {
  ?person wdt:P31 wd:Q5 .
  ?person ?label "%s"@fi .
  OPTIONAL { ?person wdt:P569 ?birthDate . }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "fi,en" . }
}
LIMIT 1`

// SearchPerson looks a person up by name. A query with no result returns
// (nil, nil): absence is data here, not an error.
func (c *Client) SearchPerson(ctx context.Context, name string) (*Entity, error) {
	query := fmt.Sprintf(searchQuery, escapeLiteral(name))

	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")

	raw, err := c.get(ctx, c.cfg.Endpoint+"?"+params.Encode(), "application/sparql-results+json")
	if err != nil {
		return nil, err
	}

	var res struct {
		Results struct {
			Bindings []map[string]struct {
				Value string `json:"value"`
			} `json:"bindings"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode sparql response: %w", err)
	}
	if len(res.Results.Bindings) == 0 {
		return nil, nil
	}

	b := res.Results.Bindings[0]
	ent := &Entity{
		QCode:     qcodeFromURI(b["person"].Value),
		Label:     b["personLabel"].Value,
		BirthDate: b["birthDate"].Value,
	}
	if ent.QCode == "" {
		return nil, nil
	}
	return ent, nil
}

// Sitelinks returns the entity's Wikipedia article titles keyed by site id
// ("fiwiki", "svwiki", ...). An unknown entity yields an empty map.
func (c *Client) Sitelinks(ctx context.Context, qcode string) (map[string]string, error) {
	params := url.Values{}
	params.Set("action", "wbgetentities")
	params.Set("ids", qcode)
	params.Set("props", "sitelinks")
	params.Set("format", "json")

	raw, err := c.get(ctx, c.cfg.EntityAPI+"?"+params.Encode(), "application/json")
	if err != nil {
		return nil, err
	}

	var res struct {
		Entities map[string]struct {
			Sitelinks map[string]struct {
				Title string `json:"title"`
			} `json:"sitelinks"`
		} `json:"entities"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode entity response: %w", err)
	}

	titles := map[string]string{}
	for _, ent := range res.Entities {
		for site, link := range ent.Sitelinks {
			titles[site] = link.Title
		}
	}
	return titles, nil
}

// get performs one logged GET round-trip and returns the body on 2xx.
func (c *Client) get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	reqID := uuid.New().String()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", accept)
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("wikidata.http.send_error",
			"req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(resp.Body)
	c.logger.Debug("wikidata.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("wikidata: non-2xx status %d", resp.StatusCode)
	}
	return raw, nil
}

func escapeLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func qcodeFromURI(uri string) string {
	if uri == "" {
		return ""
	}
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		uri = uri[i+1:]
	}
	if !strings.HasPrefix(uri, "Q") {
		return ""
	}
	return uri
}
