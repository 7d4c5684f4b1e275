package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"gbp-backend/internal/analyses"
	"gbp-backend/internal/analyzer"
	"gbp-backend/internal/jobs"
	"gbp-backend/internal/llm"
	"gbp-backend/internal/llm/gemini"
	"gbp-backend/internal/maps/serpapi"
	"gbp-backend/internal/photos"
	"gbp-backend/internal/profile"
	"gbp-backend/internal/queue"
	"gbp-backend/internal/shared/config"
	"gbp-backend/internal/shared/server"
	"gbp-backend/internal/shared/storage/db"
	"gbp-backend/internal/shared/storage/object"
	localstore "gbp-backend/internal/shared/storage/object/local"
	s3store "gbp-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	JobsRepo    jobs.Repo
	ResultsRepo profile.Repo

	AnalysesService *analyses.Service
	JobProcessor    JobProcessor
	AnalysisHandler *analyses.Handler
}

// JobProcessor allows callers to override job processing for tests.
type JobProcessor interface {
	ProcessJob(ctx context.Context, jobID string) error
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		AnalysisHandler: app.AnalysisHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ScreenshotStore {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.ScreenshotDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("GBP_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func buildServices(app *App) error {
	var jobsRepo jobs.Repo
	var resultsRepo profile.Repo
	if app.DB != nil {
		jobsRepo = &jobs.PGRepo{DB: app.DB}
		resultsRepo = &profile.PGRepo{DB: app.DB}
	} else {
		jobsRepo = jobs.NewMemoryRepo()
		resultsRepo = profile.NewMemoryRepo()
	}
	app.JobsRepo = jobsRepo
	app.ResultsRepo = resultsRepo

	mapsClient, err := serpapi.NewClient(app.Config.SerpAPIKey, app.Config.SerpBaseURL)
	if err != nil {
		return err
	}

	scraper := photos.NewGalleryScraper(app.Config.ChromeBin, app.Config.PhotoCheckLimit)
	photoRunner := photos.NewRunner(scraper, app.Config.PhotosTimeout, app.Store)

	llmClient := llm.Client(llm.Placeholder{})
	if strings.TrimSpace(app.Config.GeminiAPIKey) != "" {
		geminiClient, err := gemini.NewClient(app.Config.GeminiAPIKey,
			app.Config.GeminiModelFlash, app.Config.GeminiModelPro)
		if err != nil {
			return err
		}
		llmClient = geminiClient
	}

	svc := &analyses.Service{
		Analyzer: analyzer.New(mapsClient, photoRunner, analyzer.Timeouts{
			Reviews: app.Config.ReviewsTimeout,
			Social:  app.Config.SocialTimeout,
			Photos:  app.Config.PhotosTimeout,
		}),
		LLM:     llmClient,
		Jobs:    jobsRepo,
		Results: resultsRepo,
		Queue:   app.Queue,
	}
	app.AnalysesService = svc
	app.JobProcessor = svc
	app.AnalysisHandler = analyses.NewHandler(svc)
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
