package healthdata

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	log "github.com/sirupsen/logrus"
)

// DemoSeeder fills a fresh account with a plausible week of health data, so
// the dashboard has something to show before the first provider sync.
type DemoSeeder struct {
	reconciler *Reconciler
}

func NewDemoSeeder(reconciler *Reconciler) *DemoSeeder {
	return &DemoSeeder{
		reconciler: reconciler,
	}
}

func (s *DemoSeeder) SeedDemoWeek(ctx context.Context, userID int) error {
	samples := MetricSamples{
		Steps:     map[time.Time]int{},
		HeartRate: map[time.Time]HeartRateSample{},
		Sleep:     map[time.Time]SleepSample{},
		Activity:  map[time.Time]ActivitySample{},
		Weight:    map[time.Time]float64{},
		Calories:  map[time.Time]int{},
	}

	baseWeight := gofakeit.Float64Range(58, 95)
	today := Day(time.Now())

	for daysAgo := 0; daysAgo < ChartDays; daysAgo++ {
		date := today.AddDate(0, 0, -daysAgo)

		samples.Steps[date] = gofakeit.Number(3000, 15000)

		avgHeartRate := gofakeit.Float64Range(58, 88)
		samples.HeartRate[date] = HeartRateSample{
			Min: avgHeartRate - gofakeit.Float64Range(5, 15),
			Max: avgHeartRate + gofakeit.Float64Range(20, 60),
			Avg: avgHeartRate,
		}

		lightSleep := gofakeit.Float64Range(3, 5)
		deepSleep := gofakeit.Float64Range(1, 2.5)
		remSleep := gofakeit.Float64Range(1, 2)
		samples.Sleep[date] = SleepSample{
			Hours: lightSleep + deepSleep + remSleep,
			ByStage: map[string]float64{
				"light": lightSleep,
				"deep":  deepSleep,
				"rem":   remSleep,
			},
		}

		walking := gofakeit.Float64Range(15, 70)
		running := gofakeit.Float64Range(0, 40)
		samples.Activity[date] = ActivitySample{
			ByType: map[string]float64{
				"walking": walking,
				"running": running,
				"still":   gofakeit.Float64Range(400, 700),
			},
			ActiveMinutes: int(walking + running),
		}

		// small day-to-day drift around the base weight
		samples.Weight[date] = baseWeight + gofakeit.Float64Range(-0.6, 0.6)

		samples.Calories[date] = gofakeit.Number(1600, 2900)
	}

	if err := s.reconciler.ReconcileSync(ctx, userID, samples); err != nil {
		return fmt.Errorf("seed demo week for user %d: %w", userID, err)
	}

	log.Debugf("seeded demo week for user %d", userID)
	return nil
}
