package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/statement-ledger/internal/jobs"
	"github.com/dvloznov/statement-ledger/internal/jobs/inmemory"
	"github.com/dvloznov/statement-ledger/internal/pipeline"
)

func TestWaitForJobs(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	for _, job := range []*jobs.ImportJob{
		{JobID: "a", URI: "gs://b/a.csv", Status: jobs.JobStatusCompleted, Report: &pipeline.CommitReport{Inserted: 2}},
		{JobID: "b", URI: "gs://b/b.csv", Status: jobs.JobStatusRunning},
	} {
		if err := store.SaveJob(ctx, job); err != nil {
			t.Fatal(err)
		}
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = store.UpdateJobStatus(ctx, "b", jobs.JobStatusFailed, "missing required column")
	}()

	got, err := waitForJobs(ctx, store, []string{"a", "b"}, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("waitForJobs: %v", err)
	}
	if len(got) != 2 || got[0].JobID != "a" || got[1].Status != jobs.JobStatusFailed {
		t.Fatalf("unexpected jobs: %+v", got)
	}
	if n := printResults(got); n != 1 {
		t.Errorf("printResults failed = %d, want 1", n)
	}
}

func TestWaitForJobs_Cancelled(t *testing.T) {
	store := inmemory.NewStore()
	if err := store.SaveJob(context.Background(), &jobs.ImportJob{JobID: "a", Status: jobs.JobStatusRetrying}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := waitForJobs(ctx, store, []string{"a"}, 5*time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestWaitForJobs_UnknownJob(t *testing.T) {
	_, err := waitForJobs(context.Background(), inmemory.NewStore(), []string{"nope"}, time.Millisecond)
	if !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("err = %v, want ErrJobNotFound", err)
	}
}
