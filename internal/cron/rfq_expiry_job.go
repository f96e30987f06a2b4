package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/organimart/organimart-backend/pkg/logger"
)

type RFQExpiryJobParams struct {
	Logger     *logger.Logger
	Repository rfqExpiryRepo
}

type rfqExpiryRepo interface {
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}

// NewRFQExpiryJob relabels stale open requests as EXPIRED. The sweep is
// cosmetic hygiene for list filters; every read and write path compares
// expires_at directly and never trusts the stored label.
func NewRFQExpiryJob(params RFQExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("rfq repository required")
	}
	return &rfqExpiryJob{
		logg: params.Logger,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type rfqExpiryJob struct {
	logg *logger.Logger
	repo rfqExpiryRepo
	now  func() time.Time
}

func (j *rfqExpiryJob) Name() string { return "rfq-expiry" }

func (j *rfqExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	relabeled, err := j.repo.MarkExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("rfq expiry sweep: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"swept_at":       now,
		"rows_relabeled": relabeled,
	})
	j.logg.Info(logCtx, "rfq expiry sweep complete")
	return nil
}
