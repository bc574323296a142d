package fitness

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/healthrec/engine/internal/telemetry/tracing"

	fitnessapi "google.golang.org/api/fitness/v1"
	"google.golang.org/api/option"
)

const bucketDurationMillis = 24 * 60 * 60 * 1000

// googleFitDataTypes maps our data type names to Google Fit aggregate
// data type names.
var googleFitDataTypes = map[DataType]string{
	DataTypeSteps:     "com.google.step_count.delta",
	DataTypeHeartRate: "com.google.heart_rate.bpm",
	DataTypeSleep:     "com.google.sleep.segment",
	DataTypeActivity:  "com.google.activity.segment",
	DataTypeWeight:    "com.google.weight",
	DataTypeCalories:  "com.google.calories.expended",
}

// GoogleFitClient talks to the Google Fit aggregate REST API. The
// provided http client must already carry the user's OAuth credentials,
// the aggregate calls go out for the "me" principal.
type GoogleFitClient struct {
	service *fitnessapi.Service
}

var _ Client = (*GoogleFitClient)(nil)

func NewGoogleFitClient(ctx context.Context, httpClient *http.Client) (*GoogleFitClient, error) {
	service, err := fitnessapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create fitness service: %w", err)
	}
	return &GoogleFitClient{
		service: service,
	}, nil
}

func (c *GoogleFitClient) DailyBuckets(
	ctx context.Context,
	userID int,
	dataType DataType,
	from, to time.Time,
) (buckets []DayBucket, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "googleFitClient.dailyBuckets")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	dataTypeName, ok := googleFitDataTypes[dataType]
	if !ok {
		return nil, fmt.Errorf("unsupported data type: %s", dataType)
	}

	aggregateRequest := &fitnessapi.AggregateRequest{
		AggregateBy: []*fitnessapi.AggregateBy{
			{DataTypeName: dataTypeName},
		},
		BucketByTime:    &fitnessapi.BucketByTime{DurationMillis: bucketDurationMillis},
		StartTimeMillis: from.UnixMilli(),
		// end of the "to" day, so today's points are included
		EndTimeMillis: to.UnixMilli() + bucketDurationMillis,
	}

	response, err := c.service.Users.Dataset.
		Aggregate("me", aggregateRequest).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("aggregate %s for user %d: %w", dataTypeName, userID, err)
	}

	buckets = make([]DayBucket, 0, len(response.Bucket))
	for _, bucket := range response.Bucket {
		buckets = append(buckets, DayBucket{
			Start:  time.UnixMilli(bucket.StartTimeMillis).UTC(),
			Points: normalizePoints(dataType, bucket.Dataset),
		})
	}

	return buckets, nil
}

// normalizePoints flattens Google Fit datasets into provider-agnostic
// points. Segment streams (sleep, activity) keep the segment type and
// wall-clock duration, numeric streams keep the raw values.
func normalizePoints(dataType DataType, datasets []*fitnessapi.Dataset) []Point {
	var points []Point
	for _, dataset := range datasets {
		for _, dataPoint := range dataset.Point {
			switch dataType {
			case DataTypeSleep, DataTypeActivity:
				if len(dataPoint.Value) == 0 {
					continue
				}
				points = append(points, Point{
					SegmentType: int(dataPoint.Value[0].IntVal),
					DurationMs:  (dataPoint.EndTimeNanos - dataPoint.StartTimeNanos) / int64(time.Millisecond),
				})
			default:
				for _, value := range dataPoint.Value {
					points = append(points, Point{
						IntVal: value.IntVal,
						FpVal:  value.FpVal,
					})
				}
			}
		}
	}
	return points
}
