package healthdata

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrUnknownMetric = errors.New("unknown metric")

// Metric enumerates the health metric kinds tracked per day.
type Metric string

const (
	MetricSteps           Metric = "steps"
	MetricHeartRate       Metric = "heart_rate"
	MetricSleep           Metric = "sleep"
	MetricWeight          Metric = "weight"
	MetricCalories        Metric = "calories"
	MetricActivityMinutes Metric = "activity_minutes"
)

var AllMetrics = []Metric{
	MetricSteps, MetricHeartRate, MetricSleep,
	MetricWeight, MetricCalories, MetricActivityMinutes,
}

func ParseMetric(name string) (Metric, error) {
	switch Metric(strings.ToLower(name)) {
	case MetricSteps:
		return MetricSteps, nil
	case MetricHeartRate:
		return MetricHeartRate, nil
	case MetricSleep:
		return MetricSleep, nil
	case MetricWeight:
		return MetricWeight, nil
	case MetricCalories:
		return MetricCalories, nil
	case MetricActivityMinutes:
		return MetricActivityMinutes, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownMetric, name)
	}
}

// Day normalizes a timestamp to its calendar date, midnight UTC. All record
// dates and sample map keys go through this, so date equality is plain ==.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DailyRecord is the canonical health data row, one per (user, date).
//
// HeartRate is persisted as text; some sources deliver it that way, and
// older rows may hold non-numeric junk. Use HeartRateValue for arithmetic.
type DailyRecord struct {
	ID              int                `json:"id"`
	UserID          int                `json:"-"`
	Date            time.Time          `json:"date"`
	Steps           int                `json:"steps"`
	Weight          float64            `json:"weight"`
	Sleep           float64            `json:"sleep"`
	HeartRate       string             `json:"heartRate"`
	Activity        map[string]float64 `json:"activity"`
	ActivityMinutes int                `json:"activityMinutes"`
	Calories        int                `json:"calories"`
}

// CoerceFloat converts a value possibly stored as text into a float.
// A value that fails to parse is worth a log line, but not an error:
// aggregation treats it as 0 and moves on.
func CoerceFloat(value string) float64 {
	if value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		log.Errorf("coerce value [%s] to float: %s", value, err)
		return 0
	}
	return f
}

func (r *DailyRecord) HeartRateValue() float64 {
	return CoerceFloat(r.HeartRate)
}

// MetricValue returns the record field for the given metric as a float.
func (r *DailyRecord) MetricValue(metric Metric) float64 {
	switch metric {
	case MetricSteps:
		return float64(r.Steps)
	case MetricHeartRate:
		return r.HeartRateValue()
	case MetricSleep:
		return r.Sleep
	case MetricWeight:
		return r.Weight
	case MetricCalories:
		return float64(r.Calories)
	case MetricActivityMinutes:
		return float64(r.ActivityMinutes)
	default:
		log.Errorf("metric value: unknown metric %q", metric)
		return 0
	}
}

type TrendStatus string

const (
	TrendStatusNoData  TrendStatus = "no_data"
	TrendStatusSuccess TrendStatus = "success"
)

// WeeklyTrend is the rollup of canonical records across a trailing window.
// Computed on every request, never persisted. Summary holds the assistant
// one-liners (activity, sleep, heart), filled in at the HTTP layer.
type WeeklyTrend struct {
	TotalSteps         int         `json:"totalSteps"`
	AvgSleep           float64     `json:"avgSleep"`
	AvgHeartRate       float64     `json:"avgHeartRate"`
	TotalActiveMinutes int         `json:"totalActiveMinutes"`
	TotalCalories      int         `json:"totalCalories"`
	LatestWeight       float64     `json:"latestWeight"`
	Status             TrendStatus `json:"status"`
	Summary            []string    `json:"summary,omitempty"`
}

// ChartSeries is a dense, fixed-length series for chart rendering. Labels
// and Values always hold exactly ChartDays entries, ascending by date,
// with 0 filled in for days without a record.
type ChartSeries struct {
	Metric Metric    `json:"metric"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

const ChartDays = 7
