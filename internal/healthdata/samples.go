package healthdata

import (
	"sort"
	"time"
)

// HeartRateSample carries the per-day heart rate reduction. Min and Max are
// kept for logging and future use; only Avg makes it into the canonical record.
type HeartRateSample struct {
	Min float64
	Max float64
	Avg float64
}

type SleepSample struct {
	Hours   float64
	ByStage map[string]float64
}

type ActivitySample struct {
	ByType        map[string]float64
	ActiveMinutes int
}

// MetricSamples is the output of one sync run: per metric, a sparse mapping
// from calendar date (normalized via Day) to the reduced value for that day.
// A day with no qualifying data for a metric has no entry at all - absence
// means "no signal", never "zero".
type MetricSamples struct {
	Steps     map[time.Time]int
	HeartRate map[time.Time]HeartRateSample
	Sleep     map[time.Time]SleepSample
	Activity  map[time.Time]ActivitySample
	Weight    map[time.Time]float64
	Calories  map[time.Time]int
}

// DateUnion returns every date with a signal in any metric, ascending.
// Different metrics can cover different subsets of days; reconciliation
// has to visit all of them.
func (s MetricSamples) DateUnion() []time.Time {
	seen := map[time.Time]struct{}{}
	for date := range s.Steps {
		seen[date] = struct{}{}
	}
	for date := range s.HeartRate {
		seen[date] = struct{}{}
	}
	for date := range s.Sleep {
		seen[date] = struct{}{}
	}
	for date := range s.Activity {
		seen[date] = struct{}{}
	}
	for date := range s.Weight {
		seen[date] = struct{}{}
	}
	for date := range s.Calories {
		seen[date] = struct{}{}
	}

	dates := make([]time.Time, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates
}
