// Package listing implements the read-only client for the remote
// content index. The index is untrusted: fields missing from the
// payload decode to documented zero values.
package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cadstack/cadhoard/internal/model"
)

// PageSize is the fixed number of releases per listing page.
const PageSize = 25

// DefaultBaseURL is the production listing API endpoint.
const DefaultBaseURL = "https://guncadindex.com/api"

// Client fetches paginated release listings.
type Client struct {
	baseURL    string
	detailBase string
	httpClient *http.Client
}

// NewClient creates a listing client. An empty baseURL selects the
// default endpoint.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		detailBase: "https://guncadindex.com/detail/",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Listing API response types.
type releasePage struct {
	Results []releaseEntry `json:"results"`
}

type releaseEntry struct {
	ID          json.Number `json:"id"`
	Name        string      `json:"name"`
	URL         string      `json:"url"`
	URLLBRY     string      `json:"url_lbry"`
	Shortlink   string      `json:"shortlink"`
	Tags        []tagEntry  `json:"tags"`
	Description string      `json:"description"`
	Size        int64       `json:"size"`
	ReleaseDate string      `json:"release_date"`
	LastUpdated string      `json:"last_updated"`
	Author      string      `json:"author"`
	Version     string      `json:"version"`
	Notes       string      `json:"notes"`
	Readme      string      `json:"readme"`
	Views       int64       `json:"odysee_views"`
	Likes       int64       `json:"odysee_likes"`
	Dislikes    int64       `json:"odysee_dislikes"`
}

type tagEntry struct {
	Name string `json:"name"`
}

// FetchPage returns the releases on the given 1-based page and whether
// a further page may exist. A short page means the listing is
// exhausted.
func (c *Client) FetchPage(ctx context.Context, page int) ([]model.Release, bool, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * PageSize

	endpoint := fmt.Sprintf("%s/releases/?limit=%d&offset=%d", c.baseURL, PageSize, offset)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create listing request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	slog.Debug("Fetching listing page", "page", page, "offset", offset)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch listing page %d: %w", page, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, false, fmt.Errorf("listing returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload releasePage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("failed to decode listing page %d: %w", page, err)
	}

	releases := make([]model.Release, 0, len(payload.Results))
	for i := range payload.Results {
		releases = append(releases, c.parseEntry(&payload.Results[i]))
	}

	hasMore := len(payload.Results) == PageSize
	return releases, hasMore, nil
}

// parseEntry converts a raw listing entry into a Release, filling
// defaults for anything the source omitted.
func (c *Client) parseEntry(e *releaseEntry) model.Release {
	name := e.Name
	if name == "" {
		name = "Unknown"
	}

	tags := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		if t.Name != "" {
			tags = append(tags, t.Name)
		}
	}

	detailURL := e.URL
	switch {
	case e.Shortlink != "":
		detailURL = c.detailBase + url.PathEscape(e.Shortlink)
	case e.ID.String() != "":
		detailURL = c.detailBase + url.PathEscape(e.ID.String())
	}

	return model.Release{
		ID:          e.ID.String(),
		Name:        name,
		Tags:        tags,
		Description: e.Description,
		Notes:       e.Notes,
		Readme:      e.Readme,
		Author:      e.Author,
		Version:     e.Version,
		ReleaseDate: e.ReleaseDate,
		LastUpdated: e.LastUpdated,
		Locator:     e.URLLBRY,
		DetailURL:   detailURL,
		SizeHint:    e.Size,
		Views:       e.Views,
		Likes:       e.Likes,
		Dislikes:    e.Dislikes,
	}
}

// ScanTags walks up to maxPages listing pages and returns how often
// each distinct tag appears. Used to build exclusion lists.
func (c *Client) ScanTags(ctx context.Context, maxPages int) (map[string]int, error) {
	counts := make(map[string]int)

	for page := 1; page <= maxPages; page++ {
		releases, hasMore, err := c.FetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		for i := range releases {
			for _, tag := range releases[i].Tags {
				counts[tag]++
			}
		}
		if !hasMore {
			break
		}
	}

	return counts, nil
}
