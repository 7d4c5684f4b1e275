package scoring

import (
	"math"
	"strings"

	"gbp-backend/internal/profile"
)

// Weights applied to each sub-metric. They must sum to 1.0; recent
// activity outweighs static completeness.
const (
	WeightPosting      = 0.20
	WeightImages       = 0.20
	WeightRecency      = 0.20
	WeightStarRating   = 0.15
	WeightReviewCount  = 0.15
	WeightCompleteness = 0.05
	WeightNAPW         = 0.05
)

// Score reduces a fully populated record to a single value in [0, 10],
// rounded to one decimal place.
func Score(record *profile.Record) float64 {
	star := StarRatingScore(record.Rating)
	reviewCount := ReviewCountScore(record.ReviewsCount)
	recency := ReviewRecencyScore(record.RecentReviewsCount)
	completeness := CompletenessScore(record.AttributesCount, record.Description)
	napw := NAPWScore(record.Title, record.Address, record.Phone, record.Website)
	posting := PostingScore(record.PostsCount)
	images := ImageScore(record.PhotoCounts.OwnerPhotoCount, record.PhotoCounts.CustomerPhotoCount)

	total := posting*WeightPosting +
		images*WeightImages +
		recency*WeightRecency +
		star*WeightStarRating +
		reviewCount*WeightReviewCount +
		completeness*WeightCompleteness +
		napw*WeightNAPW

	return math.Round(total*10) / 10
}

// StarRatingScore maps a 0-5 rating linearly onto 0-10.
func StarRatingScore(rating float64) float64 {
	if rating < 0 {
		return 0
	}
	if rating > 5 {
		rating = 5
	}
	return rating / 5 * 10
}

// ReviewCountScore bands the total review count.
func ReviewCountScore(count int) float64 {
	switch {
	case count >= 250:
		return 10
	case count >= 100:
		return 8
	case count >= 50:
		return 6
	case count >= 10:
		return 3
	case count >= 1:
		return 1
	default:
		return 0
	}
}

// ReviewRecencyScore bands the count of reviews from the last month.
func ReviewRecencyScore(recentCount int) float64 {
	switch {
	case recentCount >= 5:
		return 10
	case recentCount == 4:
		return 8
	case recentCount == 3:
		return 4
	case recentCount == 2:
		return 2
	case recentCount == 1:
		return 1
	default:
		return 0
	}
}

// CompletenessScore rewards a description plus a banded attribute count,
// capped at 10.
func CompletenessScore(attributesCount int, description string) float64 {
	var score float64
	if strings.TrimSpace(description) != "" {
		score += 2
	}
	switch {
	case attributesCount >= 15:
		score += 8
	case attributesCount >= 10:
		score += 6
	case attributesCount >= 5:
		score += 4
	case attributesCount >= 1:
		score += 1
	}
	if score > 10 {
		score = 10
	}
	return score
}

// NAPWScore rates name/address/phone/website completeness. A website on
// a recognizable hosted business page does not count as a standalone
// site: it caps the score at 8 and is checked before the field counts.
func NAPWScore(name, address, phone, website string) float64 {
	if isBusinessPageSite(website) {
		return 8
	}

	filled := 0
	for _, field := range []string{name, address, phone, website} {
		if strings.TrimSpace(field) != "" {
			filled++
		}
	}

	if filled == 4 {
		return 10
	}
	switch filled {
	case 3:
		return 6
	case 2:
		return 3
	case 1:
		return 1
	default:
		return 0
	}
}

// isBusinessPageSite reports whether the website lives on a site-builder
// subdomain or a social platform page.
func isBusinessPageSite(website string) bool {
	site := strings.ToLower(strings.TrimSpace(website))
	if site == "" {
		return false
	}
	for _, pattern := range []string{".business.site", "facebook.com", "instagram.com", "linkedin.com"} {
		if strings.Contains(site, pattern) {
			return true
		}
	}
	return false
}

// PostingScore bands the count of posts from the last month.
func PostingScore(recentPosts int) float64 {
	switch {
	case recentPosts >= 4:
		return 10
	case recentPosts == 3:
		return 7
	case recentPosts == 2:
		return 5
	case recentPosts == 1:
		return 2
	default:
		return 0
	}
}

// OwnerImageScore bands the number of owner-uploaded photos.
func OwnerImageScore(count int) float64 {
	switch {
	case count >= 20:
		return 10
	case count >= 10:
		return 8
	case count >= 5:
		return 5
	case count >= 1:
		return 2
	default:
		return 0
	}
}

// CustomerImageScore bands the number of customer-uploaded photos.
func CustomerImageScore(count int) float64 {
	switch {
	case count >= 75:
		return 10
	case count >= 50:
		return 8
	case count >= 30:
		return 6
	case count >= 15:
		return 4
	case count >= 5:
		return 3
	case count >= 1:
		return 1
	default:
		return 0
	}
}

// ImageScore averages the owner and customer photo sub-scores.
func ImageScore(ownerCount, customerCount int) float64 {
	return (OwnerImageScore(ownerCount) + CustomerImageScore(customerCount)) / 2
}
