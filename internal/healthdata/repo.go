package healthdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/healthrec/engine/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrRecordNotFound = errors.New("daily record not found")

// DayPatch carries one sync's (or one manual write's) contribution to a
// single (user, date) record. A nil field means "no signal this sync" and
// leaves the stored value untouched; a non-nil field overwrites it. This is
// how "absent" is kept distinct from "zero".
type DayPatch struct {
	Steps           *int
	Weight          *float64
	Sleep           *float64
	HeartRate       *string
	Activity        map[string]float64
	ActivityMinutes *int
	Calories        *int
}

func (p DayPatch) isEmpty() bool {
	return p.Steps == nil && p.Weight == nil && p.Sleep == nil &&
		p.HeartRate == nil && p.Activity == nil &&
		p.ActivityMinutes == nil && p.Calories == nil
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Upsert merges the patch into the canonical record for (userID, date). The
// whole merge happens in one INSERT .. ON CONFLICT statement, so concurrent
// syncs for the same day cannot lose each other's fields.
func (r *Repo) Upsert(ctx context.Context, userID int, date time.Time, patch DayPatch) (_ *DailyRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.healthdata.upsert")
	span.SetAttributes(attribute.Int("user.id", userID))
	defer tracing.EndSpanWithErrCheck(span, err)

	date = Day(date)

	var activityJson []byte
	if patch.Activity != nil {
		activityJson, err = json.Marshal(patch.Activity)
		if err != nil {
			return nil, fmt.Errorf("marshal activity: %w", err)
		}
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO daily_health_data
				(user_id, date, steps, weight, sleep_hours, heart_rate, activity, activity_minutes, calories)
				VALUES (
					$1, $2,
					COALESCE($3, 0),
					COALESCE($4, 0),
					COALESCE($5, 0),
					COALESCE($6, '0'),
					COALESCE($7, '{}'::jsonb),
					COALESCE($8, 0),
					COALESCE($9, 0)
				)
			ON CONFLICT (user_id, date) DO UPDATE SET
				steps = COALESCE($3, daily_health_data.steps),
				weight = COALESCE($4, daily_health_data.weight),
				sleep_hours = COALESCE($5, daily_health_data.sleep_hours),
				heart_rate = COALESCE($6, daily_health_data.heart_rate),
				activity = COALESCE($7, daily_health_data.activity),
				activity_minutes = COALESCE($8, daily_health_data.activity_minutes),
				calories = COALESCE($9, daily_health_data.calories)
			RETURNING id, user_id, date, steps, weight, sleep_hours, heart_rate, activity, activity_minutes, calories;`,
		userID, date,
		patch.Steps, patch.Weight, patch.Sleep, patch.HeartRate,
		activityJson, patch.ActivityMinutes, patch.Calories,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	records, err := r.rows2records(rows)
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, errors.New("unexpected error [no rows next]")
	}

	return &records[0], nil
}

func (r *Repo) Get(ctx context.Context, userID int, date time.Time) (*DailyRecord, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT
				id, user_id, date, steps, weight, sleep_hours, heart_rate, activity, activity_minutes, calories
			FROM daily_health_data
			WHERE user_id = $1 AND date = $2;`,
		userID, Day(date),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	records, err := r.rows2records(rows)
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, ErrRecordNotFound
	}

	return &records[0], nil
}

// ListRange returns the user's records with from <= date <= to, newest first.
func (r *Repo) ListRange(ctx context.Context, userID int, from, to time.Time) (_ []DailyRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.healthdata.listRange")
	span.SetAttributes(attribute.Int("user.id", userID))
	defer tracing.EndSpanWithErrCheck(span, err)

	rows, err := r.db.Query(
		ctx,
		`SELECT
				id, user_id, date, steps, weight, sleep_hours, heart_rate, activity, activity_minutes, calories
			FROM daily_health_data
			WHERE user_id = $1 AND date >= $2 AND date <= $3
			ORDER BY date DESC;`,
		userID, Day(from), Day(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.rows2records(rows)
}

func (r *Repo) ListAll(ctx context.Context, userID int) ([]DailyRecord, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT
				id, user_id, date, steps, weight, sleep_hours, heart_rate, activity, activity_minutes, calories
			FROM daily_health_data
			WHERE user_id = $1
			ORDER BY date DESC;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.rows2records(rows)
}

func (r *Repo) DeleteForUser(ctx context.Context, userID int) error {
	_, err := r.db.Exec(
		ctx,
		`DELETE FROM daily_health_data WHERE user_id = $1;`,
		userID,
	)
	return err
}

func (r *Repo) rows2records(rows pgx.Rows) ([]DailyRecord, error) {
	var records []DailyRecord
	for rows.Next() {
		var record DailyRecord
		var activityBytes []byte
		if err := rows.Scan(
			&record.ID, &record.UserID, &record.Date,
			&record.Steps, &record.Weight, &record.Sleep, &record.HeartRate,
			&activityBytes, &record.ActivityMinutes, &record.Calories,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if len(activityBytes) > 0 {
			if err := json.Unmarshal(activityBytes, &record.Activity); err != nil {
				return nil, fmt.Errorf("unmarshal activity: %w", err)
			}
		}
		if record.Activity == nil {
			record.Activity = map[string]float64{}
		}
		record.Date = Day(record.Date)
		records = append(records, record)
	}
	return records, nil
}
