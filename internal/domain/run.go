// Package domain defines the business logic for the run tracker.
package domain

import (
	"context"
	"time"
)

// Run is a single tracked run. A nil FinishTime marks the run as active;
// Distance stays nil until the run is finished.
type Run struct {
	ID              int64
	UserID          int64
	StartTime       time.Time
	StartLatitude   float64
	StartLongitude  float64
	FinishTime      *time.Time
	FinishLatitude  *float64
	FinishLongitude *float64
	Distance        *float64
}

// Active reports whether the run has not been finished yet.
func (r Run) Active() bool {
	return r.FinishTime == nil
}

// RunStatistic is a run annotated with its average speed in km/h.
type RunStatistic struct {
	Run
	AverageSpeed float64
}

// Statistic aggregates a user's run history.
type Statistic struct {
	TotalRuns     int
	TotalDistance float64
	AverageSpeed  float64
}

// RunRepository captures persistence operations for runs. FindActiveByUser
// returns nil without an error when the user has no active run; the lookup
// is expected to be indexed, not a scan over the user's history.
type RunRepository interface {
	Create(ctx context.Context, run Run) (*Run, error)
	Update(ctx context.Context, run Run) (*Run, error)
	FindActiveByUser(ctx context.Context, userID int64) (*Run, error)
	FindByUserInWindow(ctx context.Context, userID int64, from, to *time.Time) ([]Run, error)
}
