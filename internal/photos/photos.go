package photos

import (
	"context"
	"strings"

	"gbp-backend/internal/profile"
)

// Uploader identities assigned to gallery photos.
const (
	UploaderOwner    = "Owner"
	UploaderCustomer = "Customer"
	UploaderUnknown  = "Unknown"
)

// Attribution is the classification of one inspected gallery photo.
type Attribution struct {
	Uploader string `json:"uploader"`
}

// Scraper produces photo attributions for a business. A failed scrape
// yields an empty list, never an error the caller must branch on.
type Scraper interface {
	Attributions(ctx context.Context, placeID, title string) ([]Attribution, error)
}

// ClassifyUploader maps an attribution text to an uploader identity.
// Text containing the business's display name is the owner; absent
// text defaults to Owner, which is what embedded video and 360 media
// show in practice.
func ClassifyUploader(attributionText, businessTitle string) string {
	text := strings.ToLower(strings.TrimSpace(attributionText))
	if text == "" {
		return UploaderOwner
	}
	title := strings.ToLower(strings.TrimSpace(businessTitle))
	if title != "" && strings.Contains(text, title) {
		return UploaderOwner
	}
	return UploaderCustomer
}

// CountByUploader tallies attributions into owner and customer counts.
// Unknown and error entries count as customer only when they carry a
// name that is not the business; everything else is the owner's.
func CountByUploader(businessTitle string, attributions []Attribution) profile.PhotoCounts {
	var counts profile.PhotoCounts
	title := strings.ToLower(strings.TrimSpace(businessTitle))
	for _, attribution := range attributions {
		uploader := strings.ToLower(strings.TrimSpace(attribution.Uploader))
		if uploader == "" || uploader == strings.ToLower(UploaderOwner) ||
			(title != "" && strings.Contains(uploader, title)) {
			counts.OwnerPhotoCount++
			continue
		}
		counts.CustomerPhotoCount++
	}
	return counts
}
