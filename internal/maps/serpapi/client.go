package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gbp-backend/internal/maps"
	"gbp-backend/internal/shared/telemetry"
)

const (
	defaultBaseURL = "https://serpapi.com/search.json"

	defaultPageLimit = 10
	defaultItemLimit = 200
)

// Client implements maps.Client against the SerpApi search endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	pageLimit  int
	itemLimit  int
}

// NewClient constructs a SerpApi client.
func NewClient(apiKey, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("SERP_API_KEY is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		pageLimit: defaultPageLimit,
		itemLimit: defaultItemLimit,
	}, nil
}

// page is the envelope shared by all SerpApi responses. Result lists are
// decoded lazily per results key.
type page struct {
	Error        string                     `json:"error"`
	PlaceResults json.RawMessage            `json:"place_results"`
	LocalResults json.RawMessage            `json:"local_results"`
	Reviews      json.RawMessage            `json:"reviews"`
	Posts        json.RawMessage            `json:"posts"`
	Knowledge    *knowledgeGraph            `json:"knowledge_graph"`
	Pagination   map[string]json.RawMessage `json:"serpapi_pagination"`
}

type knowledgeGraph struct {
	Profiles []maps.SocialLink `json:"profiles"`
}

// Search resolves a free-text query, preferring the structured place
// result over the first local result.
func (c *Client) Search(ctx context.Context, query string) (*maps.SearchResult, error) {
	params := url.Values{}
	params.Set("engine", "google_maps")
	params.Set("type", "search")
	params.Set("q", query)

	resp, err := c.get(ctx, params)
	if err != nil {
		telemetry.Warn("serpapi.search", map[string]any{"error": err.Error()})
		return nil, maps.ErrNotFound
	}
	if resp.Error != "" {
		telemetry.Warn("serpapi.search", map[string]any{"provider_error": resp.Error})
		return nil, maps.ErrNotFound
	}

	candidate := pickCandidate(resp)
	if candidate == nil || candidate.PlaceID == "" {
		return nil, maps.ErrNotFound
	}

	return &maps.SearchResult{
		PlaceID: candidate.PlaceID,
		DataID:  candidate.DataID,
		Title:   candidate.Title,
		Place:   candidate,
	}, nil
}

func pickCandidate(resp *page) *maps.Place {
	if len(resp.PlaceResults) > 0 {
		var place maps.Place
		if err := json.Unmarshal(resp.PlaceResults, &place); err == nil && place.Title != "" {
			return &place
		}
	}
	if len(resp.LocalResults) > 0 {
		var locals []maps.Place
		if err := json.Unmarshal(resp.LocalResults, &locals); err == nil && len(locals) > 0 {
			return &locals[0]
		}
	}
	return nil
}

// Details fetches the full place record. A missing or empty
// place_results payload yields nil, not an error.
func (c *Client) Details(ctx context.Context, placeID string) (*maps.Place, error) {
	params := url.Values{}
	params.Set("engine", "google_maps")
	params.Set("place_id", placeID)

	resp, err := c.get(ctx, params)
	if err != nil {
		telemetry.Warn("serpapi.details", map[string]any{"place_id": placeID, "error": err.Error()})
		return nil, nil
	}
	if resp.Error != "" || len(resp.PlaceResults) == 0 {
		return nil, nil
	}

	var place maps.Place
	if err := json.Unmarshal(resp.PlaceResults, &place); err != nil {
		telemetry.Warn("serpapi.details", map[string]any{"place_id": placeID, "error": err.Error()})
		return nil, nil
	}
	if place.Title == "" && place.Address == "" {
		return nil, nil
	}
	if place.PlaceID == "" {
		place.PlaceID = placeID
	}
	return &place, nil
}

// Reviews fetches every review page for a place, newest first.
func (c *Client) Reviews(ctx context.Context, placeID string) ([]maps.Review, error) {
	if placeID == "" {
		return nil, nil
	}
	params := url.Values{}
	params.Set("engine", "google_maps_reviews")
	params.Set("place_id", placeID)
	params.Set("sort_by", "newestFirst")

	var reviews []maps.Review
	c.paginate(ctx, params, func(p *page) (int, error) {
		var items []maps.Review
		if len(p.Reviews) > 0 {
			if err := json.Unmarshal(p.Reviews, &items); err != nil {
				return 0, err
			}
		}
		reviews = append(reviews, items...)
		return len(items), nil
	})
	return reviews, nil
}

// Posts fetches every posts page via the secondary identifier.
func (c *Client) Posts(ctx context.Context, dataID, title string) ([]maps.Post, error) {
	if dataID == "" {
		return nil, nil
	}
	params := url.Values{}
	params.Set("engine", "google_maps_posts")
	params.Set("q", title)
	params.Set("data_id", dataID)

	var posts []maps.Post
	c.paginate(ctx, params, func(p *page) (int, error) {
		var items []maps.Post
		if len(p.Posts) > 0 {
			if err := json.Unmarshal(p.Posts, &items); err != nil {
				return 0, err
			}
		}
		posts = append(posts, items...)
		return len(items), nil
	})
	return posts, nil
}

// KnowledgeSocials looks up knowledge-panel social profiles.
func (c *Client) KnowledgeSocials(ctx context.Context, query string) ([]maps.SocialLink, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)

	resp, err := c.get(ctx, params)
	if err != nil {
		telemetry.Warn("serpapi.socials", map[string]any{"error": err.Error()})
		return nil, nil
	}
	if resp.Error != "" || resp.Knowledge == nil {
		return nil, nil
	}

	links := make([]maps.SocialLink, 0, len(resp.Knowledge.Profiles))
	for _, profile := range resp.Knowledge.Profiles {
		if profile.Name == "" || profile.URL == "" {
			continue
		}
		links = append(links, profile)
	}
	return links, nil
}

// paginate repeatedly issues the query, carrying forward next_page_token,
// until a page yields no items, no token remains, or a ceiling is hit.
// Errors abort pagination and leave the caller with what was accumulated.
func (c *Client) paginate(ctx context.Context, params url.Values, consume func(*page) (int, error)) {
	engine := params.Get("engine")
	total := 0

	for pageCount := 1; pageCount <= c.pageLimit; pageCount++ {
		resp, err := c.get(ctx, params)
		if err != nil {
			telemetry.Warn("serpapi.paginate", map[string]any{
				"engine": engine, "page": pageCount, "error": err.Error(),
			})
			return
		}
		if resp.Error != "" {
			telemetry.Warn("serpapi.paginate", map[string]any{
				"engine": engine, "page": pageCount, "provider_error": resp.Error,
			})
			return
		}

		count, err := consume(resp)
		if err != nil {
			telemetry.Warn("serpapi.paginate", map[string]any{
				"engine": engine, "page": pageCount, "error": err.Error(),
			})
			return
		}
		if count == 0 {
			return
		}
		total += count
		if total >= c.itemLimit {
			telemetry.Info("serpapi.paginate", map[string]any{
				"engine": engine, "items": total, "reason": "item_limit",
			})
			return
		}

		token := nextPageToken(resp)
		if token == "" {
			return
		}
		params.Set("next_page_token", token)
	}

	telemetry.Info("serpapi.paginate", map[string]any{
		"engine": engine, "items": total, "reason": "page_limit",
	})
}

func nextPageToken(resp *page) string {
	raw, ok := resp.Pagination["next_page_token"]
	if !ok {
		return ""
	}
	var token string
	if err := json.Unmarshal(raw, &token); err != nil {
		return ""
	}
	return token
}

func (c *Client) get(ctx context.Context, params url.Values) (*page, error) {
	query := url.Values{}
	for key, values := range params {
		query[key] = values
	}
	query.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("serpapi status %d", resp.StatusCode)
	}

	var out page
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode serpapi response: %w", err)
	}
	return &out, nil
}
