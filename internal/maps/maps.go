package maps

import (
	"context"
	"errors"
)

// ErrNotFound indicates a search produced no usable place candidate.
var ErrNotFound = errors.New("no place found")

// Client is the maps-data provider contract. Implementations must degrade
// to empty results on provider errors instead of returning them: only
// Search surfaces ErrNotFound, and Details signals absence with a nil
// Place. List-returning calls report whatever was accumulated.
type Client interface {
	// Search resolves a free-text query to the best place candidate.
	Search(ctx context.Context, query string) (*SearchResult, error)
	// Details fetches the full place record by its stable identifier.
	// Returns nil when the provider has no data for the id.
	Details(ctx context.Context, placeID string) (*Place, error)
	// Reviews fetches all reviews for a place, newest first.
	Reviews(ctx context.Context, placeID string) ([]Review, error)
	// Posts fetches all posts via the secondary identifier.
	Posts(ctx context.Context, dataID, title string) ([]Post, error)
	// KnowledgeSocials looks up social profiles from the knowledge
	// panel for a "title, address" query.
	KnowledgeSocials(ctx context.Context, query string) ([]SocialLink, error)
}

// SearchResult is the resolved identity candidate plus whatever place
// fragment came back with the search response.
type SearchResult struct {
	PlaceID string
	DataID  string
	Title   string
	Place   *Place
}

// Place is the typed details fragment the provider returns for one
// business. Fields absent in the payload stay at their zero value.
type Place struct {
	PlaceID     string           `json:"place_id"`
	DataID      string           `json:"data_id"`
	Title       string           `json:"title"`
	Address     string           `json:"address"`
	Phone       string           `json:"phone"`
	Website     string           `json:"website"`
	Description string           `json:"description"`
	Rating      float64          `json:"rating"`
	Reviews     int              `json:"reviews"`
	Links       []SocialLink     `json:"links"`
	Extensions  []AttributeGroup `json:"extensions"`
	Updates     *Updates         `json:"updates"`
}

// Review carries only the fields the pipeline consumes.
type Review struct {
	Date   string  `json:"date"`
	Rating float64 `json:"rating"`
	Text   string  `json:"snippet"`
}

// Post is a business update with its relative posting date.
type Post struct {
	PostedAtText string `json:"posted_at_text"`
	Text         string `json:"text"`
}

// SocialLink is one named external profile link.
type SocialLink struct {
	Name string `json:"name"`
	URL  string `json:"link"`
}

// AttributeGroup is one entry of the provider's extensions list. Keys
// are group names, values are the attribute strings in that group.
type AttributeGroup map[string][]string

// Updates embeds posts inside a search or details response.
type Updates struct {
	Posts []Post `json:"posts"`
}

// FlattenAttributes concatenates every group's attribute list into one
// flat slice.
func FlattenAttributes(groups []AttributeGroup) []string {
	var flat []string
	for _, group := range groups {
		for _, values := range group {
			flat = append(flat, values...)
		}
	}
	return flat
}
