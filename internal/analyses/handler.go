package analyses

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gbp-backend/internal/analyzer"
	"gbp-backend/internal/jobs"
	"gbp-backend/internal/shared/server/respond"
)

// Handler exposes the analysis API over HTTP.
type Handler struct {
	svc     *Service
	limiter *pollLimiter
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		svc:     svc,
		limiter: newPollLimiter(pollLimitWindow, nil),
	}
}

// RegisterRoutes mounts the analysis endpoints on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.Analyze)
	rg.POST("/analyze/async", h.AnalyzeAsync)
	rg.GET("/check-status/:job_id", h.CheckStatus)
	rg.PUT("/update-status/:job_id", h.UpdateStatus)
	rg.POST("/website-socials", h.WebsiteSocials)
	rg.POST("/detailed-analysis", h.DetailedAnalysis)
}

// Analyze runs the full pipeline inline and returns the scored record.
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", err.Error())
		return
	}

	record, err := h.svc.AnalyzeSync(c.Request.Context(), req)
	if err != nil {
		h.analysisError(c, err)
		return
	}

	respond.OK(c, AnalyzeResponse{
		Score:            record.Score,
		Data:             record,
		DetailedAnalysis: record.Narrative,
	})
}

// AnalyzeAsync creates a background job and returns immediately.
func (h *Handler) AnalyzeAsync(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", err.Error())
		return
	}
	if req.BusinessName == "" && req.PlaceID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error",
			"business_name or place_id is required", nil)
		return
	}

	job, err := h.svc.StartAsync(c.Request.Context(), req)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start analysis", nil)
		return
	}

	respond.Accepted(c, gin.H{
		"job_id": job.ID,
		"status": job.Status,
	})
}

// CheckStatus reports a job's state, throttled per job.
func (h *Handler) CheckStatus(c *gin.Context) {
	jobID := c.Param("job_id")
	c.Set("jobId", jobID)

	if !h.limiter.Allow(jobID) {
		c.Header("Retry-After", strconv.Itoa(h.limiter.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited",
			"status polled too frequently, slow down", nil)
		return
	}

	resp, err := h.svc.Status(c.Request.Context(), jobID)
	if errors.Is(err, jobs.ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", resp.Message, nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read job status", nil)
		return
	}

	c.Set("placeId", resp.PlaceID)
	respond.OK(c, resp)
}

// UpdateStatus applies a manual status change to a job.
func (h *Handler) UpdateStatus(c *gin.Context) {
	jobID := c.Param("job_id")
	c.Set("jobId", jobID)

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "status is required", err.Error())
		return
	}
	if !jobs.ValidStatus(body.Status) {
		respond.Error(c, http.StatusBadRequest, "validation_error",
			"invalid status", gin.H{"allowed": jobs.AllStatuses()})
		return
	}

	resp, err := h.svc.UpdateStatus(c.Request.Context(), jobID, body.Status)
	if errors.Is(err, jobs.ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", statusMessages[jobs.StatusNotFound], nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update job status", nil)
		return
	}

	respond.OK(c, resp)
}

// WebsiteSocials resolves only the website and social links for a
// business, without running the full pipeline.
func (h *Handler) WebsiteSocials(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", err.Error())
		return
	}

	resp, err := h.svc.WebsiteSocials(c.Request.Context(), req)
	if err != nil {
		h.analysisError(c, err)
		return
	}

	respond.OK(c, resp)
}

// DetailedAnalysis generates a narrative for a previously computed
// record.
func (h *Handler) DetailedAnalysis(c *gin.Context) {
	var req DetailedAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "score and data are required", err.Error())
		return
	}

	narrative := h.svc.DetailedAnalysis(c.Request.Context(), req)
	respond.OK(c, DetailedAnalysisResponse{DetailedAnalysis: narrative})
}

func (h *Handler) analysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analyzer.ErrNoIdentifier):
		respond.Error(c, http.StatusBadRequest, "validation_error",
			"business_name or place_id is required", nil)
	case errors.Is(err, analyzer.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "business not found", nil)
	case errors.Is(err, analyzer.ErrDetailsUnavailable):
		respond.Error(c, http.StatusBadGateway, "upstream_error",
			"place details are currently unavailable", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "analysis failed", nil)
	}
}
