package fitness

import (
	"context"
	"time"
)

//go:generate mockgen -source=$GOFILE -destination=provider_mocks_test.go -package=fitness

// DataType names one provider metric stream.
type DataType string

const (
	DataTypeSteps     DataType = "steps"
	DataTypeHeartRate DataType = "heart_rate"
	DataTypeSleep     DataType = "sleep"
	DataTypeActivity  DataType = "activity"
	DataTypeWeight    DataType = "weight"
	DataTypeCalories  DataType = "calories"
)

// Point is one raw measurement inside a day bucket, normalized across
// providers. Which fields are meaningful depends on the data type:
// steps use IntVal, heart rate / weight / calories use FpVal, sleep and
// activity segments use SegmentType plus DurationMs.
type Point struct {
	IntVal      int64
	FpVal       float64
	SegmentType int
	DurationMs  int64
}

// DayBucket is one calendar day of points for a single data type.
// A bucket with zero points is a legal provider response and means
// "nothing recorded that day".
type DayBucket struct {
	Start  time.Time
	Points []Point
}

// Client fetches day-bucketed aggregates from a fitness provider. The
// concrete provider (Google Fit, Fitbit, ...) is behind this interface;
// everything downstream only sees the normalized bucket shape.
type Client interface {
	DailyBuckets(ctx context.Context, userID int, dataType DataType, from, to time.Time) ([]DayBucket, error)
}
