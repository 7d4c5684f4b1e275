package scoring

import (
	"math"
	"testing"

	"gbp-backend/internal/profile"
)

func TestWeightsSumToOne(t *testing.T) {
	sum := WeightPosting + WeightImages + WeightRecency +
		WeightStarRating + WeightReviewCount + WeightCompleteness + WeightNAPW
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("weights sum to %v, want 1.0", sum)
	}
}

func TestStarRatingScoreIsLinear(t *testing.T) {
	for rating := 0.0; rating <= 5.0; rating += 0.1 {
		got := StarRatingScore(rating)
		want := 2 * rating
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("StarRatingScore(%v) = %v, want %v", rating, got, want)
		}
	}
}

func TestStarRatingScoreClamps(t *testing.T) {
	if got := StarRatingScore(-1); got != 0 {
		t.Fatalf("StarRatingScore(-1) = %v, want 0", got)
	}
	if got := StarRatingScore(6); got != 10 {
		t.Fatalf("StarRatingScore(6) = %v, want 10", got)
	}
}

func TestReviewCountScoreBands(t *testing.T) {
	cases := []struct {
		count int
		want  float64
	}{
		{0, 0}, {1, 1}, {9, 1}, {10, 3}, {49, 3},
		{50, 6}, {99, 6}, {100, 8}, {249, 8}, {250, 10}, {1000, 10},
	}
	for _, tc := range cases {
		if got := ReviewCountScore(tc.count); got != tc.want {
			t.Errorf("ReviewCountScore(%d) = %v, want %v", tc.count, got, tc.want)
		}
	}
}

func TestReviewRecencyScoreBands(t *testing.T) {
	cases := []struct {
		count int
		want  float64
	}{
		{0, 0}, {1, 1}, {2, 2}, {3, 4}, {4, 8}, {5, 10}, {12, 10},
	}
	for _, tc := range cases {
		if got := ReviewRecencyScore(tc.count); got != tc.want {
			t.Errorf("ReviewRecencyScore(%d) = %v, want %v", tc.count, got, tc.want)
		}
	}
}

func TestCompletenessScore(t *testing.T) {
	cases := []struct {
		attributes  int
		description string
		want        float64
	}{
		{0, "", 0},
		{0, "has description", 2},
		{4, "", 1},
		{9, "desc", 6},
		{14, "", 6},
		{15, "", 8},
		{15, "desc", 10},
		{100, "desc", 10},
	}
	for _, tc := range cases {
		if got := CompletenessScore(tc.attributes, tc.description); got != tc.want {
			t.Errorf("CompletenessScore(%d, %q) = %v, want %v", tc.attributes, tc.description, got, tc.want)
		}
	}
}

func TestNAPWScoreBands(t *testing.T) {
	cases := []struct {
		name, address, phone, website string
		want                          float64
	}{
		{"Biz", "Addr", "555-1234", "https://biz.example.com", 10},
		{"Biz", "Addr", "555-1234", "", 6},
		{"Biz", "Addr", "", "", 3},
		{"Biz", "", "", "", 1},
		{"", "", "", "", 0},
	}
	for _, tc := range cases {
		if got := NAPWScore(tc.name, tc.address, tc.phone, tc.website); got != tc.want {
			t.Errorf("NAPWScore(%q, %q, %q, %q) = %v, want %v",
				tc.name, tc.address, tc.phone, tc.website, got, tc.want)
		}
	}
}

func TestNAPWScoreBusinessPageSiteTakesPrecedence(t *testing.T) {
	// A hosted business page caps the score at 8 even with every field
	// filled, and beats the plain field count below that.
	if got := NAPWScore("Biz", "Addr", "555-1234", "http://biz.business.site"); got != 8 {
		t.Fatalf("business.site with all fields = %v, want 8", got)
	}
	if got := NAPWScore("Biz", "Addr", "", "https://facebook.com/biz"); got != 8 {
		t.Fatalf("facebook page with 2 other fields = %v, want 8", got)
	}
	if got := NAPWScore("Biz", "", "", "https://instagram.com/biz"); got != 8 {
		t.Fatalf("instagram page = %v, want 8", got)
	}
}

func TestPostingScoreBands(t *testing.T) {
	cases := []struct {
		count int
		want  float64
	}{
		{0, 0}, {1, 2}, {2, 5}, {3, 7}, {4, 10}, {9, 10},
	}
	for _, tc := range cases {
		if got := PostingScore(tc.count); got != tc.want {
			t.Errorf("PostingScore(%d) = %v, want %v", tc.count, got, tc.want)
		}
	}
}

func TestImageScoreAveragesOwnerAndCustomer(t *testing.T) {
	// owner 20 -> 10, customer 0 -> 0
	if got := ImageScore(20, 0); got != 5 {
		t.Fatalf("ImageScore(20, 0) = %v, want 5", got)
	}
	// owner 10 -> 8, customer 50 -> 8
	if got := ImageScore(10, 50); got != 8 {
		t.Fatalf("ImageScore(10, 50) = %v, want 8", got)
	}
}

func TestOwnerImageScoreBands(t *testing.T) {
	cases := []struct {
		count int
		want  float64
	}{
		{0, 0}, {1, 2}, {4, 2}, {5, 5}, {9, 5}, {10, 8}, {19, 8}, {20, 10},
	}
	for _, tc := range cases {
		if got := OwnerImageScore(tc.count); got != tc.want {
			t.Errorf("OwnerImageScore(%d) = %v, want %v", tc.count, got, tc.want)
		}
	}
}

func TestCustomerImageScoreBands(t *testing.T) {
	cases := []struct {
		count int
		want  float64
	}{
		{0, 0}, {1, 1}, {4, 1}, {5, 3}, {14, 3}, {15, 4}, {29, 4},
		{30, 6}, {49, 6}, {50, 8}, {74, 8}, {75, 10},
	}
	for _, tc := range cases {
		if got := CustomerImageScore(tc.count); got != tc.want {
			t.Errorf("CustomerImageScore(%d) = %v, want %v", tc.count, got, tc.want)
		}
	}
}

func TestScoreEmptyRecordIsBounded(t *testing.T) {
	got := Score(&profile.Record{})
	if got < 0 || got > 10 {
		t.Fatalf("Score(empty) = %v, want value in [0, 10]", got)
	}
}

func TestScoreFullRecordIsTen(t *testing.T) {
	record := &profile.Record{
		Title:              "Main Cafe",
		Address:            "1 Main St",
		Phone:              "555-1234",
		Website:            "https://maincafe.example",
		Rating:             5.0,
		ReviewsCount:       300,
		RecentReviewsCount: 6,
		AttributesCount:    20,
		Description:        "Coffee and pastries",
		PostsCount:         5,
		PhotoCounts: profile.PhotoCounts{
			OwnerPhotoCount:    25,
			CustomerPhotoCount: 80,
		},
		TotalPhotosAnalyzed: 105,
	}
	if got := Score(record); got != 10.0 {
		t.Fatalf("Score(full record) = %v, want 10.0", got)
	}
}

func TestScoreRoundsToOneDecimal(t *testing.T) {
	record := &profile.Record{
		Rating:       4.3,
		ReviewsCount: 60,
	}
	got := Score(record)
	if rounded := math.Round(got*10) / 10; rounded != got {
		t.Fatalf("Score = %v, want one decimal place", got)
	}
	if got < 0 || got > 10 {
		t.Fatalf("Score = %v, out of range", got)
	}
}
