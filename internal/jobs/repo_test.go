package jobs

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestMemoryRepoLifecycle(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	job := Job{ID: "job-1", Status: StatusPending}
	if err := repo.Create(ctx, job); err != nil {
		t.Fatalf("Create: %v", err)
	}

	for _, status := range []string{StatusStarted, StatusRunning, StatusWriting, StatusFinished} {
		if err := repo.UpdateStatus(ctx, "job-1", status); err != nil {
			t.Fatalf("UpdateStatus(%s): %v", status, err)
		}
	}

	got, err := repo.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusFinished {
		t.Fatalf("status = %q, want %q", got.Status, StatusFinished)
	}
}

func TestMemoryRepoTerminalStatusIsFinal(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, Job{ID: "job-1", Status: StatusFailed}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.UpdateStatus(ctx, "job-1", StatusRunning); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	got, err := repo.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusFailed {
		t.Fatalf("terminal status changed to %q", got.Status)
	}
}

func TestMemoryRepoUnknownJob(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get: expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateStatus(ctx, "missing", StatusRunning); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateStatus: expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepoSetPlaceID(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, Job{ID: "job-1", Status: StatusPending}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.SetPlaceID(ctx, "job-1", "place-1"); err != nil {
		t.Fatalf("SetPlaceID: %v", err)
	}
	got, err := repo.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.PlaceID != "place-1" {
		t.Fatalf("place_id = %q, want place-1", got.PlaceID)
	}
}

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	job := Job{
		ID:        "job-1",
		PlaceID:   "place-1",
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO jobs").
		WithArgs(job.ID, job.PlaceID, job.Status, nil, job.CreatedAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateStatusGuardsTerminalStates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()

	// Zero rows affected, but the job exists: it is terminal and the
	// update is ignored.
	mock.ExpectExec("UPDATE jobs").
		WithArgs("job-1", StatusRunning, sqlmock.AnyArg(), StatusFinished, StatusFailed).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, place_id, status").
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "place_id", "status", "params", "created_at", "updated_at"}).
			AddRow("job-1", "place-1", StatusFinished, nil, now, now))

	repo := &PGRepo{DB: db}
	if err := repo.UpdateStatus(context.Background(), "job-1", StatusRunning); err != nil {
		t.Fatalf("UpdateStatus on terminal job: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateStatusUnknownJob(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("UPDATE jobs").
		WithArgs("missing", StatusRunning, sqlmock.AnyArg(), StatusFinished, StatusFailed).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, place_id, status").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	repo := &PGRepo{DB: db}
	if err := repo.UpdateStatus(context.Background(), "missing", StatusRunning); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStatusHelpers(t *testing.T) {
	if !IsTerminal(StatusFinished) || !IsTerminal(StatusFailed) {
		t.Fatal("terminal statuses not recognized")
	}
	if IsTerminal(StatusRunning) {
		t.Fatal("Analyzing must not be terminal")
	}
	for _, status := range AllStatuses() {
		if !ValidStatus(status) {
			t.Fatalf("status %q not valid", status)
		}
	}
	if ValidStatus(StatusNotFound) {
		t.Fatal("not_found must not be a storable status")
	}
}
