package analyzer

import (
	"math"
	"strconv"
	"strings"

	"gbp-backend/internal/maps"
)

// recentReviewVocabulary lists the provider's relative dates that fall
// within the last month. Anything containing "day" also qualifies.
var recentReviewVocabulary = map[string]struct{}{
	"now":         {},
	"today":       {},
	"a week ago":  {},
	"2 weeks ago": {},
	"3 weeks ago": {},
	"4 weeks ago": {},
	"a month ago": {},
}

// IsRecentReview reports whether a review's relative date string falls
// within the last month.
func IsRecentReview(dateText string) bool {
	date := strings.ToLower(strings.TrimSpace(dateText))
	if date == "" {
		return false
	}
	if _, ok := recentReviewVocabulary[date]; ok {
		return true
	}
	return strings.Contains(date, "day")
}

// CountRecentReviews counts reviews dated within the last month.
func CountRecentReviews(reviews []maps.Review) int {
	count := 0
	for _, review := range reviews {
		if IsRecentReview(review.Date) {
			count++
		}
	}
	return count
}

// RelativeDateToDays converts a relative date string like "a week ago"
// or "3 days ago" to an estimated day count. Unparseable input returns
// +Inf so it never passes a recency check.
func RelativeDateToDays(dateText string) float64 {
	date := strings.ToLower(strings.TrimSpace(dateText))
	if date == "" {
		return math.Inf(1)
	}
	if strings.Contains(date, "now") || strings.Contains(date, "moment") {
		return 0
	}

	parts := strings.Fields(date)
	if len(parts) == 0 {
		return math.Inf(1)
	}

	var quantity float64
	if parts[0] == "a" || parts[0] == "an" {
		quantity = 1
	} else {
		parsed, err := strconv.Atoi(parts[0])
		if err != nil {
			return math.Inf(1)
		}
		quantity = float64(parsed)
	}

	switch {
	case strings.Contains(date, "day"):
		return quantity
	case strings.Contains(date, "week"):
		return quantity * 7
	case strings.Contains(date, "month"):
		return quantity * 30
	case strings.Contains(date, "year"):
		return quantity * 365
	case strings.Contains(date, "hour"):
		return quantity / 24
	}
	return math.Inf(1)
}

// recentPostWindowDays approximates one month.
const recentPostWindowDays = 31

// CountRecentPosts counts posts made within the last month.
func CountRecentPosts(posts []maps.Post) int {
	count := 0
	for _, post := range posts {
		if post.PostedAtText == "" {
			continue
		}
		if RelativeDateToDays(post.PostedAtText) <= recentPostWindowDays {
			count++
		}
	}
	return count
}
