package analyzer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"gbp-backend/internal/maps"
	"gbp-backend/internal/photos"
)

type stubMaps struct {
	searchResult *maps.SearchResult
	searchErr    error
	place        *maps.Place
	reviews      []maps.Review
	reviewsErr   error
	posts        []maps.Post
	socials      []maps.SocialLink
	socialsPanic bool

	detailsCalls atomic.Int32
	reviewsCalls atomic.Int32
	postsCalls   atomic.Int32
}

func (s *stubMaps) Search(ctx context.Context, query string) (*maps.SearchResult, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.searchResult, nil
}

func (s *stubMaps) Details(ctx context.Context, placeID string) (*maps.Place, error) {
	s.detailsCalls.Add(1)
	return s.place, nil
}

func (s *stubMaps) Reviews(ctx context.Context, placeID string) ([]maps.Review, error) {
	s.reviewsCalls.Add(1)
	if s.reviewsErr != nil {
		return nil, s.reviewsErr
	}
	return s.reviews, nil
}

func (s *stubMaps) Posts(ctx context.Context, dataID, title string) ([]maps.Post, error) {
	s.postsCalls.Add(1)
	return s.posts, nil
}

func (s *stubMaps) KnowledgeSocials(ctx context.Context, query string) ([]maps.SocialLink, error) {
	if s.socialsPanic {
		panic("social lookup exploded")
	}
	return s.socials, nil
}

type stubPhotos struct {
	attributions []photos.Attribution
	delay        time.Duration
}

func (s *stubPhotos) Attributions(ctx context.Context, placeID, title string) ([]photos.Attribution, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.attributions, nil
}

func testPlace() *maps.Place {
	return &maps.Place{
		PlaceID:     "place-1",
		DataID:      "data-1",
		Title:       "Main Cafe",
		Address:     "1 Main St",
		Phone:       "555-1234",
		Website:     "https://maincafe.example",
		Description: "Coffee and pastries",
		Rating:      4.5,
		Reviews:     120,
		Extensions: []maps.AttributeGroup{
			{"amenities": {"wifi", "outdoor seating"}},
			{"payments": {"credit cards"}},
		},
	}
}

func TestAnalyzeMergesAllBranches(t *testing.T) {
	stub := &stubMaps{
		place: testPlace(),
		reviews: []maps.Review{
			{Date: "a week ago"},
			{Date: "2 months ago"},
			{Date: "3 days ago"},
		},
		posts:   []maps.Post{{PostedAtText: "2 weeks ago"}, {PostedAtText: "a year ago"}},
		socials: []maps.SocialLink{{Name: "Facebook", URL: "https://facebook.com/maincafe"}},
	}
	scraper := &stubPhotos{attributions: []photos.Attribution{
		{Uploader: "Main Cafe"},
		{Uploader: "John Smith"},
		{Uploader: "Owner"},
	}}

	analyzer := New(stub, scraper, DefaultTimeouts())
	record, err := analyzer.Analyze(context.Background(), Request{PlaceID: "place-1"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if record.Title != "Main Cafe" || record.PlaceID != "place-1" {
		t.Fatalf("identity fields wrong: %+v", record)
	}
	if record.RecentReviewsCount != 2 {
		t.Fatalf("recent reviews = %d, want 2", record.RecentReviewsCount)
	}
	if record.PostsCount != 1 {
		t.Fatalf("posts count = %d, want 1", record.PostsCount)
	}
	if record.AttributesCount != 3 {
		t.Fatalf("attributes count = %d, want 3", record.AttributesCount)
	}
	if len(record.SocialLinks) != 1 {
		t.Fatalf("social links = %d, want 1", len(record.SocialLinks))
	}
	if record.PhotoCounts.OwnerPhotoCount != 2 || record.PhotoCounts.CustomerPhotoCount != 1 {
		t.Fatalf("photo counts wrong: %+v", record.PhotoCounts)
	}
	if record.PhotoCounts.OwnerPhotoCount+record.PhotoCounts.CustomerPhotoCount != record.TotalPhotosAnalyzed {
		t.Fatalf("photo count invariant broken: %+v", record)
	}
}

func TestAnalyzeNoIdentifier(t *testing.T) {
	analyzer := New(&stubMaps{}, &stubPhotos{}, DefaultTimeouts())
	if _, err := analyzer.Analyze(context.Background(), Request{}); !errors.Is(err, ErrNoIdentifier) {
		t.Fatalf("expected ErrNoIdentifier, got %v", err)
	}
}

func TestAnalyzeNotFoundShortCircuits(t *testing.T) {
	stub := &stubMaps{searchErr: maps.ErrNotFound}
	analyzer := New(stub, &stubPhotos{}, DefaultTimeouts())

	_, err := analyzer.Analyze(context.Background(), Request{Query: "nowhere cafe"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if stub.detailsCalls.Load() != 0 {
		t.Fatal("details must not be fetched after a failed search")
	}
	if stub.reviewsCalls.Load() != 0 || stub.postsCalls.Load() != 0 {
		t.Fatal("no fan-out calls expected after a failed search")
	}
}

func TestAnalyzeDetailsUnavailable(t *testing.T) {
	stub := &stubMaps{place: nil}
	analyzer := New(stub, &stubPhotos{}, DefaultTimeouts())

	if _, err := analyzer.Analyze(context.Background(), Request{PlaceID: "place-1"}); !errors.Is(err, ErrDetailsUnavailable) {
		t.Fatalf("expected ErrDetailsUnavailable, got %v", err)
	}
}

func TestAnalyzeBranchFailureIsIsolated(t *testing.T) {
	place := testPlace()
	place.Links = nil
	stub := &stubMaps{
		place:        place,
		reviews:      []maps.Review{{Date: "today"}},
		socialsPanic: true,
	}
	scraper := &stubPhotos{attributions: []photos.Attribution{{Uploader: "Jane Doe"}}}

	analyzer := New(stub, scraper, DefaultTimeouts())
	record, err := analyzer.Analyze(context.Background(), Request{PlaceID: "place-1"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(record.SocialLinks) != 0 {
		t.Fatalf("expected empty social links after branch panic, got %v", record.SocialLinks)
	}
	if record.RecentReviewsCount != 1 {
		t.Fatal("reviews branch result missing after sibling failure")
	}
	if record.TotalPhotosAnalyzed != 1 {
		t.Fatal("photos branch result missing after sibling failure")
	}
}

func TestAnalyzePhotoTimeoutDegradesToZero(t *testing.T) {
	stub := &stubMaps{place: testPlace()}
	scraper := &stubPhotos{
		attributions: []photos.Attribution{{Uploader: "Jane Doe"}},
		delay:        500 * time.Millisecond,
	}

	timeouts := DefaultTimeouts()
	timeouts.Photos = 50 * time.Millisecond
	analyzer := New(stub, scraper, timeouts)

	record, err := analyzer.Analyze(context.Background(), Request{PlaceID: "place-1"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if record.TotalPhotosAnalyzed != 0 {
		t.Fatalf("expected zero photos after timeout, got %d", record.TotalPhotosAnalyzed)
	}
	if record.PhotoCounts.OwnerPhotoCount != 0 || record.PhotoCounts.CustomerPhotoCount != 0 {
		t.Fatalf("expected zero photo counts, got %+v", record.PhotoCounts)
	}
}

func TestAnalyzeAppliesUserOverrides(t *testing.T) {
	stub := &stubMaps{place: testPlace()}
	analyzer := New(stub, &stubPhotos{}, DefaultTimeouts())

	rating := 3.5
	reviewCount := 42
	record, err := analyzer.Analyze(context.Background(), Request{
		PlaceID:     "place-1",
		Address:     "2 Other St",
		Phone:       "555-9999",
		Rating:      &rating,
		ReviewCount: &reviewCount,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if record.Address != "2 Other St" || record.Phone != "555-9999" {
		t.Fatalf("contact overrides not applied: %+v", record)
	}
	if record.Rating != 3.5 || record.ReviewsCount != 42 {
		t.Fatalf("reputation overrides not applied: %+v", record)
	}
}

func TestAnalyzePostsPreferDetailsOverLookup(t *testing.T) {
	place := testPlace()
	place.Updates = &maps.Updates{Posts: []maps.Post{{PostedAtText: "a week ago"}}}
	stub := &stubMaps{place: place, posts: []maps.Post{{PostedAtText: "2 days ago"}}}

	analyzer := New(stub, &stubPhotos{}, DefaultTimeouts())
	record, err := analyzer.Analyze(context.Background(), Request{PlaceID: "place-1"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if stub.postsCalls.Load() != 0 {
		t.Fatal("explicit posts lookup must not run when details embed posts")
	}
	if record.PostsCount != 1 {
		t.Fatalf("posts count = %d, want 1", record.PostsCount)
	}
}

func TestAnalyzeAllBranchesEmptyStillPopulates(t *testing.T) {
	place := &maps.Place{PlaceID: "place-1", Title: "Main Cafe"}
	stub := &stubMaps{place: place}
	analyzer := New(stub, &stubPhotos{}, DefaultTimeouts())

	record, err := analyzer.Analyze(context.Background(), Request{PlaceID: "place-1"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if record.SocialLinks == nil {
		t.Fatal("social_links must be an empty slice, not nil")
	}
	if record.ReviewsCount != 0 || record.PostsCount != 0 || record.TotalPhotosAnalyzed != 0 {
		t.Fatalf("count fields must default to zero: %+v", record)
	}
}

func TestWebsiteSocials(t *testing.T) {
	place := testPlace()
	place.Links = []maps.SocialLink{{Name: "Instagram", URL: "https://instagram.com/maincafe"}}
	stub := &stubMaps{place: place}

	analyzer := New(stub, &stubPhotos{}, DefaultTimeouts())
	website, links, err := analyzer.WebsiteSocials(context.Background(), Request{PlaceID: "place-1"})
	if err != nil {
		t.Fatalf("WebsiteSocials: %v", err)
	}
	if website != "https://maincafe.example" {
		t.Fatalf("website = %q", website)
	}
	if len(links) != 1 || links[0].Name != "Instagram" {
		t.Fatalf("links = %+v", links)
	}
}
