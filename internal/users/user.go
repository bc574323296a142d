package users

import "time"

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Settings - per-user dashboard preferences and goals.
type Settings struct {
	UserID               int       `json:"-"`
	WeightGoalKilos      float64   `json:"weightGoalKilos"`
	DailyStepsGoal       int       `json:"dailyStepsGoal"`
	NotificationsEnabled bool      `json:"notificationsEnabled"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func DefaultSettings(userID int) Settings {
	return Settings{
		UserID:               userID,
		WeightGoalKilos:      0,
		DailyStepsGoal:       10000,
		NotificationsEnabled: true,
	}
}

// AccountDeletion - a scheduled account removal. The account stays usable
// until ScheduledFor, and the request can be cancelled before that.
type AccountDeletion struct {
	ID           int        `json:"id"`
	UserID       int        `json:"-"`
	RequestedAt  time.Time  `json:"requestedAt"`
	ScheduledFor time.Time  `json:"scheduledFor"`
	CancelledAt  *time.Time `json:"cancelledAt,omitempty"`
}

// DeletionGracePeriod - how long after the deletion request the account
// actually gets removed.
const DeletionGracePeriod = 30 * 24 * time.Hour
