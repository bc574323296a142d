package healthdata

import (
	"context"
	"errors"
	"time"

	"github.com/healthrec/engine/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// Analyzer computes the derived read-side views (weekly trend, chart series)
// from canonical records. Window length is set once at construction; every
// window is inclusive of the anchor day: [anchor - (windowDays-1), anchor].
type Analyzer struct {
	repo       recordsStore
	windowDays int
	// nowFunc is injectable for deterministic tests
	nowFunc func() time.Time
}

func NewAnalyzer(repo recordsStore, windowDays int) *Analyzer {
	if windowDays <= 0 {
		windowDays = 7
	}
	return &Analyzer{
		repo:       repo,
		windowDays: windowDays,
		nowFunc:    time.Now,
	}
}

func (a *Analyzer) WindowDays() int {
	return a.windowDays
}

// WeeklyTrend aggregates the user's records across the trailing window.
// No records in the window is a regular outcome, reported via the status
// field with zeroed trends, not an error.
func (a *Analyzer) WeeklyTrend(ctx context.Context, userID int, windowDays int) (_ *WeeklyTrend, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "healthdata.weeklyTrend")
	span.SetAttributes(attribute.Int("user.id", userID))
	defer tracing.EndSpanWithErrCheck(span, err)

	if windowDays <= 0 {
		windowDays = a.windowDays
	}

	today := Day(a.nowFunc())
	from := today.AddDate(0, 0, -(windowDays - 1))

	records, err := a.repo.ListRange(ctx, userID, from, today)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return &WeeklyTrend{Status: TrendStatusNoData}, nil
	}

	trend := &WeeklyTrend{Status: TrendStatusSuccess}
	var sleepSum, heartRateSum float64
	for _, record := range records {
		trend.TotalSteps += record.Steps
		trend.TotalActiveMinutes += record.ActivityMinutes
		trend.TotalCalories += record.Calories
		sleepSum += record.Sleep
		heartRateSum += record.HeartRateValue()
	}
	trend.AvgSleep = sleepSum / float64(len(records))
	trend.AvgHeartRate = heartRateSum / float64(len(records))

	// records come back newest first, so the chronologically last
	// measurement is the head of the list
	trend.LatestWeight = records[0].Weight

	return trend, nil
}

// ChartSeries builds the dense 7-day series for one metric, ascending by
// date and ending at today. Days without a record contribute a 0, so the
// output always has exactly ChartDays labels and values.
func (a *Analyzer) ChartSeries(ctx context.Context, userID int, metric Metric) (_ *ChartSeries, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "healthdata.chartSeries")
	span.SetAttributes(
		attribute.Int("user.id", userID),
		attribute.String("metric", string(metric)),
	)
	defer tracing.EndSpanWithErrCheck(span, err)

	today := Day(a.nowFunc())
	from := today.AddDate(0, 0, -(ChartDays - 1))

	records, err := a.repo.ListRange(ctx, userID, from, today)
	if err != nil {
		return nil, err
	}

	recordsByDate := make(map[time.Time]DailyRecord, len(records))
	for _, record := range records {
		recordsByDate[record.Date] = record
	}

	series := &ChartSeries{
		Metric: metric,
		Labels: make([]string, 0, ChartDays),
		Values: make([]float64, 0, ChartDays),
	}
	for date := from; !date.After(today); date = date.AddDate(0, 0, 1) {
		series.Labels = append(series.Labels, date.Format("Mon"))
		if record, ok := recordsByDate[date]; ok {
			series.Values = append(series.Values, record.MetricValue(metric))
		} else {
			series.Values = append(series.Values, 0)
		}
	}

	return series, nil
}

// RecordOrDefault returns the canonical record for the date, or a zero
// record when none exists. Read paths never fail on missing data.
func (a *Analyzer) RecordOrDefault(ctx context.Context, userID int, date time.Time) (*DailyRecord, error) {
	record, err := a.repo.Get(ctx, userID, date)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return &DailyRecord{
				UserID:   userID,
				Date:     Day(date),
				Activity: map[string]float64{},
			}, nil
		}
		return nil, err
	}
	return record, nil
}
