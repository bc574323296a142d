package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/healthrec/engine/internal/telemetry/tracing"
	"github.com/healthrec/engine/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrDeletionNotFound = errors.New("account deletion not found")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, user *User) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.add")
	defer tracing.EndSpanWithErrCheck(span, err)

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO health_user
				(email, password_hash, first_name, last_name, created_at)
				VALUES ($1, $2, $3, $4, $5)
			RETURNING id;`,
		user.Email, user.PasswordHash, user.FirstName, user.LastName, user.CreatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, errors.New("unexpected error [no rows next]")
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	user.ID = id
	return user, nil
}

func (r *Repo) Get(ctx context.Context, id int) (*User, error) {
	return r.getUser(
		ctx,
		`SELECT id, email, password_hash, first_name, last_name, created_at
			FROM health_user WHERE id = $1;`,
		id,
	)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getUser(
		ctx,
		`SELECT id, email, password_hash, first_name, last_name, created_at
			FROM health_user WHERE email = $1;`,
		email,
	)
}

func (r *Repo) getUser(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repo) UpdateProfile(ctx context.Context, user *User) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE health_user SET first_name = $1, last_name = $2 WHERE id = $3;`,
		user.FirstName, user.LastName, user.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM health_user WHERE id = $1;`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *Repo) GetSettings(ctx context.Context, userID int) (*Settings, error) {
	var settings Settings
	err := r.db.QueryRow(
		ctx,
		`SELECT user_id, weight_goal_kilos, daily_steps_goal, notifications_enabled, updated_at
			FROM user_settings WHERE user_id = $1;`,
		userID,
	).Scan(
		&settings.UserID, &settings.WeightGoalKilos, &settings.DailyStepsGoal,
		&settings.NotificationsEnabled, &settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			defaults := DefaultSettings(userID)
			return &defaults, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *Repo) SaveSettings(ctx context.Context, settings *Settings) error {
	settings.UpdatedAt = time.Now()
	_, err := r.db.Exec(
		ctx,
		`INSERT INTO user_settings
				(user_id, weight_goal_kilos, daily_steps_goal, notifications_enabled, updated_at)
				VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id) DO UPDATE SET
				weight_goal_kilos = EXCLUDED.weight_goal_kilos,
				daily_steps_goal = EXCLUDED.daily_steps_goal,
				notifications_enabled = EXCLUDED.notifications_enabled,
				updated_at = EXCLUDED.updated_at;`,
		settings.UserID, settings.WeightGoalKilos, settings.DailyStepsGoal,
		settings.NotificationsEnabled, settings.UpdatedAt,
	)
	return err
}

func (r *Repo) RequestDeletion(ctx context.Context, userID int, requestedAt time.Time) (_ *AccountDeletion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.requestDeletion")
	defer tracing.EndSpanWithErrCheck(span, err)

	deletion := &AccountDeletion{
		UserID:       userID,
		RequestedAt:  requestedAt,
		ScheduledFor: requestedAt.Add(DeletionGracePeriod),
	}

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO account_deletion
				(user_id, requested_at, scheduled_for)
				VALUES ($1, $2, $3)
			RETURNING id;`,
		deletion.UserID, deletion.RequestedAt, deletion.ScheduledFor,
	).Scan(&deletion.ID)
	if err != nil {
		return nil, err
	}

	return deletion, nil
}

func (r *Repo) CancelDeletion(ctx context.Context, userID int, cancelledAt time.Time) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE account_deletion SET cancelled_at = $1
			WHERE user_id = $2 AND cancelled_at IS NULL;`,
		cancelledAt, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDeletionNotFound
	}
	return nil
}

// DueDeletions returns the active deletion requests whose grace period
// has run out by the given time.
func (r *Repo) DueDeletions(ctx context.Context, now time.Time) ([]AccountDeletion, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, requested_at, scheduled_for, cancelled_at
			FROM account_deletion
			WHERE cancelled_at IS NULL AND scheduled_for <= $1;`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deletions []AccountDeletion
	for rows.Next() {
		var deletion AccountDeletion
		if err := rows.Scan(
			&deletion.ID, &deletion.UserID, &deletion.RequestedAt,
			&deletion.ScheduledFor, &deletion.CancelledAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		deletions = append(deletions, deletion)
	}
	return deletions, rows.Err()
}

// PendingDeletion returns the active (not cancelled) deletion request for the user.
func (r *Repo) PendingDeletion(ctx context.Context, userID int) (*AccountDeletion, error) {
	var deletion AccountDeletion
	err := r.db.QueryRow(
		ctx,
		`SELECT id, user_id, requested_at, scheduled_for, cancelled_at
			FROM account_deletion
			WHERE user_id = $1 AND cancelled_at IS NULL
			ORDER BY requested_at DESC
			LIMIT 1;`,
		userID,
	).Scan(
		&deletion.ID, &deletion.UserID, &deletion.RequestedAt,
		&deletion.ScheduledFor, &deletion.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeletionNotFound
		}
		return nil, err
	}
	return &deletion, nil
}
