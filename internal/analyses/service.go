package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gbp-backend/internal/analyzer"
	"gbp-backend/internal/jobs"
	"gbp-backend/internal/llm"
	"gbp-backend/internal/profile"
	"gbp-backend/internal/queue"
	"gbp-backend/internal/scoring"
	"gbp-backend/internal/shared/metrics"
	"gbp-backend/internal/shared/telemetry"
)

// Service runs analyses synchronously and through the background job
// lifecycle.
type Service struct {
	Analyzer *analyzer.Analyzer
	LLM      llm.Client
	Jobs     jobs.Repo
	Results  profile.Repo
	Queue    queue.Client
}

// AnalyzeSync runs the full pipeline in the request path: aggregate,
// score, summarize, persist.
func (s *Service) AnalyzeSync(ctx context.Context, req AnalyzeRequest) (*profile.Record, error) {
	started := time.Now()
	metrics.IncJobStarted()

	record, err := s.Analyzer.Analyze(ctx, toAnalyzerRequest(req))
	if err != nil {
		metrics.IncJobFailed()
		return nil, err
	}

	record.Score = scoring.Score(record)
	record.Narrative = s.summarize(ctx, record, record.Score, req.ModelChoice)
	s.persistResult(ctx, record)

	metrics.IncJobCompleted()
	metrics.ObservePipelineDurationMs(float64(time.Since(started).Milliseconds()))
	return record, nil
}

// StartAsync creates a Pending job and dispatches execution, through the
// queue when one is configured, otherwise on a detached goroutine.
func (s *Service) StartAsync(ctx context.Context, req AnalyzeRequest) (jobs.Job, error) {
	params, err := json.Marshal(req)
	if err != nil {
		return jobs.Job{}, fmt.Errorf("marshal job params: %w", err)
	}

	job := jobs.Job{
		ID:        uuid.NewString(),
		PlaceID:   req.PlaceID,
		Status:    jobs.StatusPending,
		Params:    params,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Jobs.Create(ctx, job); err != nil {
		return jobs.Job{}, err
	}

	if s.Queue != nil {
		msg := queue.Message{
			JobID:      job.ID,
			RequestID:  requestIDFromContext(ctx),
			EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
			Version:    1,
		}
		err := s.Queue.Send(ctx, msg)
		if err == nil {
			return job, nil
		}
		telemetry.Error("analysis.enqueue", map[string]any{
			"job_id": job.ID, "error": err.Error(),
		})
	}

	go func(ctx context.Context, jobID string) {
		if err := s.ProcessJob(ctx, jobID); err != nil {
			telemetry.Error("analysis.job", map[string]any{
				"job_id": jobID, "error": err.Error(),
			})
		}
	}(backgroundWithRequestID(ctx), job.ID)

	return job, nil
}

// ProcessJob executes one background job end to end. Pipeline failures
// land the job in its failure terminal state and are not returned;
// the error return is reserved for infrastructure problems where a
// retry can help.
func (s *Service) ProcessJob(ctx context.Context, jobID string) (err error) {
	started := time.Now()
	metrics.IncJobStarted()

	defer func() {
		if r := recover(); r != nil {
			s.failJob(ctx, jobID, started, fmt.Errorf("panic: %v", r))
			err = nil
		}
	}()

	job, err := s.Jobs.Get(ctx, jobID)
	if err != nil {
		metrics.IncJobFailed()
		return fmt.Errorf("job lookup %s: %w", jobID, err)
	}

	var req AnalyzeRequest
	if len(job.Params) > 0 {
		if err := json.Unmarshal(job.Params, &req); err != nil {
			s.failJob(ctx, jobID, started, fmt.Errorf("decode job params: %w", err))
			return nil
		}
	} else {
		req.PlaceID = job.PlaceID
	}

	s.advance(ctx, jobID, jobs.StatusStarted)
	s.advance(ctx, jobID, jobs.StatusRunning)

	record, err := s.Analyzer.Analyze(ctx, toAnalyzerRequest(req))
	if err != nil {
		s.failJob(ctx, jobID, started, err)
		return nil
	}

	if record.PlaceID != "" && record.PlaceID != job.PlaceID {
		if err := s.Jobs.SetPlaceID(ctx, jobID, record.PlaceID); err != nil {
			telemetry.Warn("analysis.job", map[string]any{
				"job_id": jobID, "error": err.Error(),
			})
		}
	}

	record.Score = scoring.Score(record)

	s.advance(ctx, jobID, jobs.StatusWriting)
	record.Narrative = s.summarize(ctx, record, record.Score, req.ModelChoice)
	s.persistResult(ctx, record)

	s.advance(ctx, jobID, jobs.StatusFinished)
	metrics.IncJobCompleted()
	metrics.ObservePipelineDurationMs(float64(time.Since(started).Milliseconds()))
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"job_id":            jobID,
		"place_id":          record.PlaceID,
		"status":            jobs.StatusFinished,
		"status_transition": "Writing the Analysis->Analysis Finished",
		"duration_ms":       time.Since(started).Milliseconds(),
	})
	return nil
}

// Status returns the job's current state plus the result payload once
// the job finished.
func (s *Service) Status(ctx context.Context, jobID string) (JobStatusResponse, error) {
	job, err := s.Jobs.Get(ctx, jobID)
	if errors.Is(err, jobs.ErrNotFound) {
		return JobStatusResponse{
			Status:  jobs.StatusNotFound,
			JobID:   jobID,
			Message: statusMessages[jobs.StatusNotFound],
		}, jobs.ErrNotFound
	}
	if err != nil {
		return JobStatusResponse{}, err
	}

	resp := JobStatusResponse{
		Status:  job.Status,
		JobID:   job.ID,
		PlaceID: job.PlaceID,
		Message: statusMessages[job.Status],
	}

	if job.Status == jobs.StatusFinished && job.PlaceID != "" {
		record, err := s.Results.GetByPlaceID(ctx, job.PlaceID)
		if err != nil {
			telemetry.Warn("analysis.status", map[string]any{
				"job_id": jobID, "place_id": job.PlaceID, "error": err.Error(),
			})
		} else {
			resp.Data = &record
			resp.Message = fmt.Sprintf("Analysis completed for %s. Overall score: %.1f",
				record.Title, record.Score)
		}
	}
	return resp, nil
}

// UpdateStatus applies a manual status change and returns the job's
// state afterward. Jobs in a terminal state stay unchanged.
func (s *Service) UpdateStatus(ctx context.Context, jobID, status string) (JobStatusResponse, error) {
	if !jobs.ValidStatus(status) {
		return JobStatusResponse{}, fmt.Errorf("invalid status %q, allowed: %s",
			status, strings.Join(jobs.AllStatuses(), ", "))
	}
	if err := s.Jobs.UpdateStatus(ctx, jobID, status); err != nil {
		return JobStatusResponse{}, err
	}
	return s.Status(ctx, jobID)
}

// WebsiteSocials resolves only the contact surface of a profile.
func (s *Service) WebsiteSocials(ctx context.Context, req AnalyzeRequest) (WebsiteSocialsResponse, error) {
	website, links, err := s.Analyzer.WebsiteSocials(ctx, toAnalyzerRequest(req))
	if err != nil {
		return WebsiteSocialsResponse{}, err
	}
	return WebsiteSocialsResponse{Website: website, SocialLinks: links}, nil
}

// DetailedAnalysis generates a narrative for an already computed record.
func (s *Service) DetailedAnalysis(ctx context.Context, req DetailedAnalysisRequest) string {
	return s.summarize(ctx, req.Data, req.Score, req.ModelChoice)
}

func (s *Service) summarize(ctx context.Context, record *profile.Record, score float64, tier string) string {
	client := s.LLM
	if client == nil {
		client = llm.Placeholder{}
	}
	return client.Summarize(ctx, record, score, llm.NormalizeTier(tier))
}

// persistResult upserts the record, best effort. A storage failure must
// not fail an otherwise completed analysis.
func (s *Service) persistResult(ctx context.Context, record *profile.Record) {
	if s.Results == nil || record.PlaceID == "" {
		return
	}
	if err := s.Results.Upsert(ctx, *record); err != nil {
		telemetry.Error("analysis.persist", map[string]any{
			"place_id": record.PlaceID, "error": err.Error(),
		})
	}
}

func (s *Service) advance(ctx context.Context, jobID, status string) {
	if err := s.Jobs.UpdateStatus(ctx, jobID, status); err != nil {
		telemetry.Warn("analysis.status", map[string]any{
			"job_id": jobID, "status": status, "error": err.Error(),
		})
	}
}

// failJob lands the job in its failure terminal state. The update runs
// on a fresh context so a cancelled pipeline context cannot block it.
func (s *Service) failJob(ctx context.Context, jobID string, started time.Time, cause error) {
	updateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Jobs.UpdateStatus(updateCtx, jobID, jobs.StatusFailed); err != nil {
		telemetry.Error("analysis.job", map[string]any{
			"job_id": jobID, "error": err.Error(),
		})
	}
	metrics.IncJobFailed()
	metrics.ObservePipelineDurationMs(float64(time.Since(started).Milliseconds()))
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"job_id":            jobID,
		"status":            jobs.StatusFailed,
		"status_transition": "Analyzing->Analysis Failed",
		"error":             sanitizeError(cause),
		"duration_ms":       time.Since(started).Milliseconds(),
	})
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

func toAnalyzerRequest(req AnalyzeRequest) analyzer.Request {
	return analyzer.Request{
		Query:       req.BusinessName,
		PlaceID:     req.PlaceID,
		Address:     req.Address,
		Phone:       req.PhoneNumber,
		Rating:      req.StarRating,
		ReviewCount: req.ReviewCount,
	}
}
