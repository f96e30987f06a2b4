package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/organimart/organimart-backend/pkg/logger"
)

func TestRFQExpiryJobSweepsStaleRequests(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeRFQExpiryRepo{relabeled: 3}
	job := newRFQExpiryJob(t, repo)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !repo.lastNow.Equal(now) {
		t.Fatalf("expected sweep time %s, got %s", now, repo.lastNow)
	}
	if repo.called != 1 {
		t.Fatalf("expected repo called once, got %d", repo.called)
	}
}

func TestRFQExpiryJobPropagatesErrors(t *testing.T) {
	repo := &fakeRFQExpiryRepo{err: errors.New("boom")}
	job := newRFQExpiryJob(t, repo)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func newRFQExpiryJob(t *testing.T, repo *fakeRFQExpiryRepo) *rfqExpiryJob {
	t.Helper()
	jobIface, err := NewRFQExpiryJob(RFQExpiryJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewRFQExpiryJob: %v", err)
	}
	job, ok := jobIface.(*rfqExpiryJob)
	if !ok {
		t.Fatalf("expected rfqExpiryJob, got %T", jobIface)
	}
	return job
}

type fakeRFQExpiryRepo struct {
	lastNow   time.Time
	relabeled int64
	err       error
	called    int
}

func (f *fakeRFQExpiryRepo) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	f.called++
	f.lastNow = now
	if f.err != nil {
		return 0, f.err
	}
	return f.relabeled, nil
}
