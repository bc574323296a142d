package healthdata

import (
	"context"
	"fmt"
	"time"

	"github.com/healthrec/engine/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

//go:generate mockgen -source=$GOFILE -destination=reconciler_mocks_test.go -package=healthdata

type recordsStore interface {
	Upsert(ctx context.Context, userID int, date time.Time, patch DayPatch) (*DailyRecord, error)
	Get(ctx context.Context, userID int, date time.Time) (*DailyRecord, error)
	ListRange(ctx context.Context, userID int, from, to time.Time) ([]DailyRecord, error)
}

// Reconciler folds one sync's sparse samples into the canonical store.
type Reconciler struct {
	repo recordsStore
}

func NewReconciler(repo recordsStore) *Reconciler {
	return &Reconciler{
		repo: repo,
	}
}

// ReconcileSync upserts one canonical record per date with any signal in
// the samples. Metrics without a signal on a date stay nil in the patch, so
// previously stored values survive. Each date is upserted independently;
// a failed date is reported but does not stop the others.
func (rec *Reconciler) ReconcileSync(ctx context.Context, userID int, samples MetricSamples) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "healthdata.reconcileSync")
	span.SetAttributes(attribute.Int("user.id", userID))
	defer tracing.EndSpanWithErrCheck(span, err)

	dates := samples.DateUnion()
	if len(dates) == 0 {
		log.Debugf("reconcile sync for user %d: no dates with signal", userID)
		return nil
	}

	span.SetAttributes(attribute.Int("dates.count", len(dates)))

	var errs error
	for _, date := range dates {
		patch := DayPatch{}
		if steps, ok := samples.Steps[date]; ok {
			patch.Steps = &steps
		}
		if hr, ok := samples.HeartRate[date]; ok {
			hrText := fmt.Sprintf("%g", hr.Avg)
			patch.HeartRate = &hrText
		}
		if sleep, ok := samples.Sleep[date]; ok {
			patch.Sleep = &sleep.Hours
		}
		if activity, ok := samples.Activity[date]; ok {
			patch.Activity = activity.ByType
			patch.ActivityMinutes = &activity.ActiveMinutes
		}
		if weight, ok := samples.Weight[date]; ok {
			patch.Weight = &weight
		}
		if calories, ok := samples.Calories[date]; ok {
			patch.Calories = &calories
		}

		if _, err := rec.repo.Upsert(ctx, userID, date, patch); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("upsert %s: %w", date.Format("2006-01-02"), err))
		}
	}

	return errs
}

// WriteMetric sets exactly one metric field on the record for the given
// date, creating the record with defaults if it does not exist yet.
func (rec *Reconciler) WriteMetric(
	ctx context.Context,
	userID int,
	metric Metric,
	value float64,
	date time.Time,
) (_ *DailyRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "healthdata.writeMetric")
	span.SetAttributes(
		attribute.Int("user.id", userID),
		attribute.String("metric", string(metric)),
	)
	defer tracing.EndSpanWithErrCheck(span, err)

	patch := DayPatch{}
	switch metric {
	case MetricSteps:
		steps := int(value)
		patch.Steps = &steps
	case MetricHeartRate:
		hrText := fmt.Sprintf("%g", value)
		patch.HeartRate = &hrText
	case MetricSleep:
		patch.Sleep = &value
	case MetricWeight:
		patch.Weight = &value
	case MetricCalories:
		calories := int(value)
		patch.Calories = &calories
	case MetricActivityMinutes:
		activityMinutes := int(value)
		patch.ActivityMinutes = &activityMinutes
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}

	return rec.repo.Upsert(ctx, userID, date, patch)
}
