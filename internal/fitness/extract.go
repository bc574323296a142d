package fitness

import (
	"strconv"
	"time"

	"github.com/healthrec/engine/internal/healthdata"
)

// Sleep segment categories, as delivered by the provider.
const (
	sleepSegmentAsleep = 2
	sleepSegmentLight  = 4
	sleepSegmentDeep   = 5
	sleepSegmentRem    = 6
)

// activityTypeNames maps provider activity segment codes to labels.
// Unknown codes keep their numeric identity via the fallback in
// activityName, so no signal gets silently dropped.
var activityTypeNames = map[int]string{
	0:  "inactive",
	1:  "biking",
	2:  "on_foot",
	3:  "still",
	7:  "walking",
	8:  "running",
	9:  "in_vehicle",
	10: "on_bicycle",
}

// activeTypes are the activity labels counted into the single
// activity_minutes number.
var activeTypes = map[string]bool{
	"walking":    true,
	"running":    true,
	"on_foot":    true,
	"biking":     true,
	"on_bicycle": true,
}

func activityName(segmentType int) string {
	if name, ok := activityTypeNames[segmentType]; ok {
		return name
	}
	return "activity_" + strconv.Itoa(segmentType)
}

// All extractors below are sparse on purpose: a bucket with no qualifying
// points produces no entry for that date, which downstream reconciliation
// reads as "no signal", distinct from a recorded zero.

// ExtractSteps sums step counts per day.
func ExtractSteps(buckets []DayBucket) map[time.Time]int {
	out := map[time.Time]int{}
	for _, bucket := range buckets {
		if len(bucket.Points) == 0 {
			continue
		}
		steps := 0
		for _, point := range bucket.Points {
			steps += int(point.IntVal)
		}
		out[healthdata.Day(bucket.Start)] = steps
	}
	return out
}

// ExtractHeartRate reduces each day's readings to min, max and mean bpm.
func ExtractHeartRate(buckets []DayBucket) map[time.Time]healthdata.HeartRateSample {
	out := map[time.Time]healthdata.HeartRateSample{}
	for _, bucket := range buckets {
		if len(bucket.Points) == 0 {
			continue
		}
		sample := healthdata.HeartRateSample{Min: bucket.Points[0].FpVal, Max: bucket.Points[0].FpVal}
		var sum float64
		for _, point := range bucket.Points {
			if point.FpVal < sample.Min {
				sample.Min = point.FpVal
			}
			if point.FpVal > sample.Max {
				sample.Max = point.FpVal
			}
			sum += point.FpVal
		}
		sample.Avg = sum / float64(len(bucket.Points))
		out[healthdata.Day(bucket.Start)] = sample
	}
	return out
}

// ExtractSleep sums qualifying sleep segments per day, partitioned by
// stage. A day is reported only when it has a positive sleep total.
func ExtractSleep(buckets []DayBucket) map[time.Time]healthdata.SleepSample {
	out := map[time.Time]healthdata.SleepSample{}
	for _, bucket := range buckets {
		var totalMs, lightMs, deepMs, remMs int64
		for _, point := range bucket.Points {
			switch point.SegmentType {
			case sleepSegmentAsleep, sleepSegmentLight, sleepSegmentDeep, sleepSegmentRem:
				totalMs += point.DurationMs
			default:
				continue
			}
			switch point.SegmentType {
			case sleepSegmentLight:
				lightMs += point.DurationMs
			case sleepSegmentDeep:
				deepMs += point.DurationMs
			case sleepSegmentRem:
				remMs += point.DurationMs
			}
		}
		if totalMs <= 0 {
			continue
		}
		out[healthdata.Day(bucket.Start)] = healthdata.SleepSample{
			Hours: ms2hours(totalMs),
			ByStage: map[string]float64{
				"light": ms2hours(lightMs),
				"deep":  ms2hours(deepMs),
				"rem":   ms2hours(remMs),
			},
		}
	}
	return out
}

func ms2hours(ms int64) float64 {
	return float64(ms) / (1000 * 60 * 60)
}

// ExtractActivity sums segment durations per activity label and totals
// the "active" labels into minutes. Days with no segments are skipped.
func ExtractActivity(buckets []DayBucket) map[time.Time]healthdata.ActivitySample {
	out := map[time.Time]healthdata.ActivitySample{}
	for _, bucket := range buckets {
		if len(bucket.Points) == 0 {
			continue
		}
		byType := map[string]float64{}
		for _, point := range bucket.Points {
			name := activityName(point.SegmentType)
			byType[name] += float64(point.DurationMs) / (1000 * 60)
		}

		var activeMinutes float64
		for name, minutes := range byType {
			if activeTypes[name] {
				activeMinutes += minutes
			}
		}

		out[healthdata.Day(bucket.Start)] = healthdata.ActivitySample{
			ByType:        byType,
			ActiveMinutes: int(activeMinutes + 0.5),
		}
	}
	return out
}

// ExtractWeight keeps the last measurement of each day - the most recent
// reading wins over the daily average.
func ExtractWeight(buckets []DayBucket) map[time.Time]float64 {
	out := map[time.Time]float64{}
	for _, bucket := range buckets {
		if len(bucket.Points) == 0 {
			continue
		}
		out[healthdata.Day(bucket.Start)] = bucket.Points[len(bucket.Points)-1].FpVal
	}
	return out
}

// ExtractCalories sums expended calories per day, reported only when the
// total is positive.
func ExtractCalories(buckets []DayBucket) map[time.Time]int {
	out := map[time.Time]int{}
	for _, bucket := range buckets {
		var sum float64
		for _, point := range bucket.Points {
			sum += point.FpVal
		}
		if sum <= 0 {
			continue
		}
		out[healthdata.Day(bucket.Start)] = int(sum)
	}
	return out
}
