package profile

// SocialLink is one named external profile link on the record.
type SocialLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// PhotoCounts splits analyzed gallery photos by uploader identity.
type PhotoCounts struct {
	OwnerPhotoCount    int `json:"owner_photo_count"`
	CustomerPhotoCount int `json:"customer_photo_count"`
}

// Record is the canonical aggregated business profile. Every count
// field defaults to zero on missing data so scoring never sees an
// absent key.
type Record struct {
	PlaceID string `json:"place_id"`
	Title   string `json:"title"`

	Address string `json:"address"`
	Phone   string `json:"phone"`
	Website string `json:"website"`

	Rating             float64 `json:"rating"`
	ReviewsCount       int     `json:"reviews_count"`
	RecentReviewsCount int     `json:"recent_reviews_count"`

	AttributesCount int    `json:"attributes_count"`
	Description     string `json:"description"`

	SocialLinks []SocialLink `json:"social_links"`

	PostsCount int `json:"posts_count"`

	PhotoCounts         PhotoCounts `json:"photo_counts_by_uploader"`
	TotalPhotosAnalyzed int         `json:"total_photos_analyzed"`

	Score     float64 `json:"score"`
	Narrative string  `json:"narrative,omitempty"`
}
