package fitness

import (
	"context"
	"fmt"
	"time"

	"github.com/healthrec/engine/internal/healthdata"
	"github.com/healthrec/engine/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

//go:generate mockgen -source=$GOFILE -destination=sync_mocks_test.go -package=fitness

type reconciler interface {
	ReconcileSync(ctx context.Context, userID int, samples healthdata.MetricSamples) error
}

// Service runs one provider fetch + reconciliation pass per user. One
// upstream outage on a single metric must not cost the user the rest of
// that day's data, so per-metric fetch failures are collected and the
// remaining metrics proceed.
type Service struct {
	client   Client
	recon    reconciler
	syncDays int
	nowFunc  func() time.Time
}

func NewService(client Client, recon reconciler, syncDays int) *Service {
	if syncDays <= 0 {
		syncDays = 7
	}
	return &Service{
		client:   client,
		recon:    recon,
		syncDays: syncDays,
		nowFunc:  time.Now,
	}
}

// SyncUser fetches the last syncDays of provider data, reduces it to
// sparse per-day samples and reconciles them into the canonical records.
// Returns the number of dates that carried at least one signal.
func (s *Service) SyncUser(ctx context.Context, userID int) (syncedDates int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "fitnessService.syncUser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	today := healthdata.Day(s.nowFunc())
	from := today.AddDate(0, 0, -(s.syncDays - 1))

	var fetchErrs error
	fetch := func(dataType DataType) []DayBucket {
		buckets, fetchErr := s.client.DailyBuckets(ctx, userID, dataType, from, today)
		if fetchErr != nil {
			log.Errorf("fitness sync, user %d, fetch %s: %s", userID, dataType, fetchErr)
			fetchErrs = multierr.Append(fetchErrs, fmt.Errorf("fetch %s: %w", dataType, fetchErr))
			return nil
		}
		return buckets
	}

	samples := healthdata.MetricSamples{
		Steps:     ExtractSteps(fetch(DataTypeSteps)),
		HeartRate: ExtractHeartRate(fetch(DataTypeHeartRate)),
		Sleep:     ExtractSleep(fetch(DataTypeSleep)),
		Activity:  ExtractActivity(fetch(DataTypeActivity)),
		Weight:    ExtractWeight(fetch(DataTypeWeight)),
		Calories:  ExtractCalories(fetch(DataTypeCalories)),
	}

	dates := samples.DateUnion()
	if len(dates) == 0 {
		if fetchErrs != nil {
			return 0, fmt.Errorf("fitness provider unavailable: %w", fetchErrs)
		}
		log.Debugf("fitness sync, user %d: no provider data in the last %d days", userID, s.syncDays)
		return 0, nil
	}

	if err := s.recon.ReconcileSync(ctx, userID, samples); err != nil {
		return 0, fmt.Errorf("reconcile synced data: %w", err)
	}

	if fetchErrs != nil {
		// partial sync still counts, the failed metrics land next run
		log.Warnf("fitness sync, user %d: %d dates reconciled with partial fetch failures: %s",
			userID, len(dates), fetchErrs)
	}

	return len(dates), nil
}
