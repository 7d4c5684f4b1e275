package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gbp-backend/internal/maps"
	"gbp-backend/internal/photos"
	"gbp-backend/internal/profile"
	"gbp-backend/internal/shared/telemetry"
)

// Sentinel errors surfaced to callers. Everything else the pipeline can
// hit degrades to defaults or is wrapped as ErrAnalysisFailed.
var (
	ErrNoIdentifier       = errors.New("either business_name or place_id must be provided")
	ErrNotFound           = errors.New("no business profile found")
	ErrDetailsUnavailable = errors.New("could not fetch business details")
	ErrAnalysisFailed     = errors.New("analysis failed")
)

// Request is one analysis invocation. User-supplied override fields
// take precedence over provider values in the merged record.
type Request struct {
	Query   string
	PlaceID string

	Address     string
	Phone       string
	Rating      *float64
	ReviewCount *int
}

// Timeouts bound each fan-out branch independently.
type Timeouts struct {
	Reviews time.Duration
	Social  time.Duration
	Photos  time.Duration
}

// DefaultTimeouts returns the standard per-branch budgets.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Reviews: 60 * time.Second,
		Social:  30 * time.Second,
		Photos:  300 * time.Second,
	}
}

// Analyzer aggregates a business's public profile into one record. It
// holds no request-scoped state and is safe to invoke from detached
// background tasks.
type Analyzer struct {
	maps     maps.Client
	photos   photos.Scraper
	timeouts Timeouts
}

// New constructs an Analyzer.
func New(mapsClient maps.Client, photoScraper photos.Scraper, timeouts Timeouts) *Analyzer {
	if timeouts.Reviews <= 0 {
		timeouts.Reviews = DefaultTimeouts().Reviews
	}
	if timeouts.Social <= 0 {
		timeouts.Social = DefaultTimeouts().Social
	}
	if timeouts.Photos <= 0 {
		timeouts.Photos = DefaultTimeouts().Photos
	}
	return &Analyzer{
		maps:     mapsClient,
		photos:   photoScraper,
		timeouts: timeouts,
	}
}

// Analyze resolves the business identity, fans out the independent
// fetches, and merges everything into a fully populated record. Only
// identity and details failures are fatal; branch failures degrade to
// that branch's empty default.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (record *profile.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("analyzer.panic", map[string]any{"panic": fmt.Sprint(r)})
			record = nil
			err = fmt.Errorf("%w: %v", ErrAnalysisFailed, r)
		}
	}()

	identity, searchPlace, err := a.resolveIdentity(ctx, req)
	if err != nil {
		return nil, err
	}

	place, err := a.maps.Details(ctx, identity.PlaceID)
	if err != nil || place == nil {
		return nil, fmt.Errorf("%w: place_id %s", ErrDetailsUnavailable, identity.PlaceID)
	}

	dataID := place.DataID
	if dataID == "" && searchPlace != nil {
		dataID = searchPlace.DataID
	}
	title := place.Title

	branches := a.fanOut(ctx, identity.PlaceID, title, place)

	posts := a.fetchPosts(ctx, place, searchPlace, dataID, title)

	counts := photos.CountByUploader(title, branches.attributions)

	record = &profile.Record{
		PlaceID:             identity.PlaceID,
		Title:               title,
		Address:             place.Address,
		Phone:               place.Phone,
		Website:             place.Website,
		Description:         place.Description,
		Rating:              place.Rating,
		ReviewsCount:        place.Reviews,
		RecentReviewsCount:  CountRecentReviews(branches.reviews),
		AttributesCount:     len(maps.FlattenAttributes(place.Extensions)),
		SocialLinks:         branches.socials,
		PostsCount:          CountRecentPosts(posts),
		PhotoCounts:         counts,
		TotalPhotosAnalyzed: len(branches.attributions),
	}
	if record.SocialLinks == nil {
		record.SocialLinks = []profile.SocialLink{}
	}

	applyOverrides(record, req)
	return record, nil
}

// WebsiteSocials resolves just the website and social links for a
// business, skipping reviews, posts, and photos.
func (a *Analyzer) WebsiteSocials(ctx context.Context, req Request) (string, []profile.SocialLink, error) {
	identity, searchPlace, err := a.resolveIdentity(ctx, req)
	if err != nil {
		return "", nil, err
	}

	place, err := a.maps.Details(ctx, identity.PlaceID)
	if err != nil || place == nil {
		if searchPlace == nil {
			return "", nil, fmt.Errorf("%w: place_id %s", ErrDetailsUnavailable, identity.PlaceID)
		}
		place = searchPlace
	}

	links := a.socialLinks(ctx, place)
	if links == nil {
		links = []profile.SocialLink{}
	}
	return place.Website, links, nil
}

// resolveIdentity turns the request into a stable place identity. A
// direct place_id skips the search entirely.
func (a *Analyzer) resolveIdentity(ctx context.Context, req Request) (maps.SearchResult, *maps.Place, error) {
	if req.PlaceID != "" {
		return maps.SearchResult{PlaceID: req.PlaceID}, nil, nil
	}
	if req.Query == "" {
		return maps.SearchResult{}, nil, ErrNoIdentifier
	}

	result, err := a.maps.Search(ctx, req.Query)
	if err != nil || result == nil || result.PlaceID == "" {
		return maps.SearchResult{}, nil, fmt.Errorf("%w for query %q", ErrNotFound, req.Query)
	}
	return *result, result.Place, nil
}

type branchResults struct {
	reviews      []maps.Review
	socials      []profile.SocialLink
	attributions []photos.Attribution
}

// fanOut launches the three independent branches and awaits each with
// its own timeout. A branch that fails or times out contributes its
// empty default without disturbing its siblings.
func (a *Analyzer) fanOut(ctx context.Context, placeID, title string, place *maps.Place) branchResults {
	reviewsCh := make(chan []maps.Review, 1)
	socialsCh := make(chan []profile.SocialLink, 1)
	photosCh := make(chan []photos.Attribution, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				telemetry.Error("analyzer.branch", map[string]any{"branch": "reviews", "panic": fmt.Sprint(r)})
				reviewsCh <- nil
			}
		}()
		branchCtx, cancel := context.WithTimeout(ctx, a.timeouts.Reviews)
		defer cancel()
		reviews, err := a.maps.Reviews(branchCtx, placeID)
		if err != nil {
			telemetry.Warn("analyzer.branch", map[string]any{"branch": "reviews", "error": err.Error()})
			reviews = nil
		}
		reviewsCh <- reviews
	}()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				telemetry.Error("analyzer.branch", map[string]any{"branch": "social", "panic": fmt.Sprint(r)})
				socialsCh <- nil
			}
		}()
		branchCtx, cancel := context.WithTimeout(ctx, a.timeouts.Social)
		defer cancel()
		socialsCh <- a.socialLinks(branchCtx, place)
	}()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				telemetry.Error("analyzer.branch", map[string]any{"branch": "photos", "panic": fmt.Sprint(r)})
				photosCh <- nil
			}
		}()
		branchCtx, cancel := context.WithTimeout(ctx, a.timeouts.Photos)
		defer cancel()
		attributions, err := a.photos.Attributions(branchCtx, placeID, title)
		if err != nil {
			telemetry.Warn("analyzer.branch", map[string]any{"branch": "photos", "error": err.Error()})
			attributions = nil
		}
		photosCh <- attributions
	}()

	var results branchResults
	results.reviews = await(reviewsCh, a.timeouts.Reviews+time.Second, "reviews")
	results.socials = await(socialsCh, a.timeouts.Social+time.Second, "social")
	results.attributions = await(photosCh, a.timeouts.Photos+time.Second, "photos")
	return results
}

// await reads a branch result, falling back to the zero value when the
// branch fails to deliver within its grace window.
func await[T any](ch <-chan T, deadline time.Duration, branch string) T {
	var zero T
	select {
	case value := <-ch:
		return value
	case <-time.After(deadline):
		telemetry.Warn("analyzer.branch", map[string]any{"branch": branch, "timed_out": true})
		return zero
	}
}

// socialLinks prefers provider-supplied links and falls back to a
// knowledge-panel search keyed by name and address.
func (a *Analyzer) socialLinks(ctx context.Context, place *maps.Place) []profile.SocialLink {
	if place == nil {
		return nil
	}
	if len(place.Links) > 0 {
		return toProfileLinks(place.Links)
	}
	if place.Title == "" || place.Address == "" {
		return nil
	}

	query := place.Title + ", " + place.Address
	links, err := a.maps.KnowledgeSocials(ctx, query)
	if err != nil {
		telemetry.Warn("analyzer.socials", map[string]any{"error": err.Error()})
		return nil
	}
	return toProfileLinks(links)
}

func toProfileLinks(links []maps.SocialLink) []profile.SocialLink {
	if len(links) == 0 {
		return nil
	}
	out := make([]profile.SocialLink, 0, len(links))
	for _, link := range links {
		out = append(out, profile.SocialLink{Name: link.Name, URL: link.URL})
	}
	return out
}

// fetchPosts runs after the fan-out. Posts embedded in the details
// response win, then posts from the initial search, then an explicit
// lookup by the secondary identifier. First non-empty source wins.
func (a *Analyzer) fetchPosts(ctx context.Context, place, searchPlace *maps.Place, dataID, title string) []maps.Post {
	if place != nil && place.Updates != nil && len(place.Updates.Posts) > 0 {
		return place.Updates.Posts
	}
	if searchPlace != nil && searchPlace.Updates != nil && len(searchPlace.Updates.Posts) > 0 {
		return searchPlace.Updates.Posts
	}
	if dataID == "" {
		return nil
	}
	posts, err := a.maps.Posts(ctx, dataID, title)
	if err != nil {
		telemetry.Warn("analyzer.posts", map[string]any{"error": err.Error()})
		return nil
	}
	return posts
}

// applyOverrides lets the caller correct known-stale provider data.
func applyOverrides(record *profile.Record, req Request) {
	if req.Address != "" {
		record.Address = req.Address
	}
	if req.Phone != "" {
		record.Phone = req.Phone
	}
	if req.Rating != nil {
		record.Rating = *req.Rating
	}
	if req.ReviewCount != nil {
		record.ReviewsCount = *req.ReviewCount
	}
}
