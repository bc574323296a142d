package assistant

import (
	"context"
	"fmt"

	"github.com/healthrec/engine/internal/healthdata"

	log "github.com/sirupsen/logrus"
)

// TrendSummaries produces the three weekly one-liners (activity, sleep,
// heart). A failed generation falls back to canned text, the numeric
// trend is already on its way to the client and must not be held up.
func (a *Api) TrendSummaries(ctx context.Context, userID int, trend *healthdata.WeeklyTrend) []string {
	summaryPrompts := []struct {
		kind     string
		prompt   string
		fallback string
	}{
		{
			kind: "activity",
			prompt: fmt.Sprintf(
				"Give me a brief one-line summary of my activity levels this week. I have a total of %d active minutes and %d steps.",
				trend.TotalActiveMinutes, trend.TotalSteps,
			),
			fallback: "Activity summary unavailable",
		},
		{
			kind: "sleep",
			prompt: fmt.Sprintf(
				"Give me a brief one-line summary of my sleep patterns this week. I averaged %.1f hours of sleep per night.",
				trend.AvgSleep,
			),
			fallback: "Sleep summary unavailable",
		},
		{
			kind: "heart",
			prompt: fmt.Sprintf(
				"Give me a brief one-line summary of my heart health this week. My average heart rate was %.1f bpm.",
				trend.AvgHeartRate,
			),
			fallback: "Heart health summary unavailable",
		},
	}

	summaries := make([]string, 0, len(summaryPrompts))
	for _, p := range summaryPrompts {
		cacheKey := fmt.Sprintf("summary::%d::%s", userID, p.kind)
		line, err := a.Generate(ctx, cacheKey, p.prompt)
		if err != nil {
			log.Errorf("weekly %s summary for user %d: %s", p.kind, userID, err)
			line = p.fallback
		}
		summaries = append(summaries, line)
	}
	return summaries
}
