package analyses

import "gbp-backend/internal/profile"

// AnalyzeRequest is the request body shared by the analyze endpoints.
// Exactly one of BusinessName or PlaceID must be provided; the override
// fields let a caller correct known-stale provider data.
type AnalyzeRequest struct {
	BusinessName string   `json:"business_name"`
	PlaceID      string   `json:"place_id"`
	Address      string   `json:"address"`
	PhoneNumber  string   `json:"phone_number"`
	StarRating   *float64 `json:"star_rating"`
	ReviewCount  *int     `json:"review_count"`
	ModelChoice  string   `json:"model_choice"`
}

// AnalyzeResponse is the synchronous analysis result.
type AnalyzeResponse struct {
	Score            float64         `json:"score"`
	Data             *profile.Record `json:"data"`
	DetailedAnalysis string          `json:"detailed_analysis"`
}

// JobStatusResponse is returned by the status endpoints.
type JobStatusResponse struct {
	Status  string          `json:"status"`
	JobID   string          `json:"job_id"`
	PlaceID string          `json:"place_id"`
	Message string          `json:"message"`
	Data    *profile.Record `json:"data,omitempty"`
}

// WebsiteSocialsResponse carries just the contact surface of a profile.
type WebsiteSocialsResponse struct {
	Website     string               `json:"website"`
	SocialLinks []profile.SocialLink `json:"social_links"`
}

// DetailedAnalysisRequest feeds an already computed record back in for
// narrative generation.
type DetailedAnalysisRequest struct {
	Score       float64         `json:"score"`
	Data        *profile.Record `json:"data" binding:"required"`
	ModelChoice string          `json:"model_choice"`
}

// DetailedAnalysisResponse is the narrative generation result.
type DetailedAnalysisResponse struct {
	DetailedAnalysis string `json:"detailed_analysis"`
}

// statusMessages maps each job status to the human-readable polling
// message.
var statusMessages = map[string]string{
	"Analysis Finished":    "Analysis completed successfully",
	"Analyzing":            "Analysis is currently in progress",
	"Analysis Started":     "Analysis has been started",
	"Writing the Analysis": "Analysis is being finalized",
	"Pending":              "Analysis is pending to start",
	"Analysis Failed":      "Analysis failed due to an error",
	"not_found":            "Job not found",
}
