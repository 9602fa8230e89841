package domain

import (
	"context"
	"fmt"
	"time"
)

// StatisticsService aggregates a user's run history.
type StatisticsService struct {
	users UserRepository
	runs  RunRepository
}

// NewStatisticsService constructs a StatisticsService.
func NewStatisticsService(users UserRepository, runs RunRepository) *StatisticsService {
	return &StatisticsService{users: users, runs: runs}
}

// GetUserRuns returns the user's runs whose start time falls inside the
// optional window, each annotated with its average speed. Bound semantics:
// both bounds inclusive-between, lower alone at-or-after, upper alone
// strictly-before.
func (s *StatisticsService) GetUserRuns(ctx context.Context, userID int64, from, to *time.Time) ([]RunStatistic, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", userID, err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	runs, err := s.runs.FindByUserInWindow(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("find runs for user %d: %w", userID, err)
	}

	stats := make([]RunStatistic, 0, len(runs))
	for _, run := range runs {
		stats = append(stats, RunStatistic{
			Run:          run,
			AverageSpeed: averageSpeed(run),
		})
	}
	return stats, nil
}

// GetUserStatistic folds the windowed runs into totals. Runs without a
// positive distance or without both timestamps count toward TotalRuns but
// are excluded from distance and duration sums.
func (s *StatisticsService) GetUserStatistic(ctx context.Context, userID int64, from, to *time.Time) (*Statistic, error) {
	runs, err := s.GetUserRuns(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	var totalDistance, totalHours float64
	for _, run := range runs {
		if run.Distance == nil || *run.Distance <= 0 || run.FinishTime == nil {
			continue
		}
		totalDistance += *run.Distance
		totalHours += run.FinishTime.Sub(run.StartTime).Hours()
	}

	stat := &Statistic{
		TotalRuns:     len(runs),
		TotalDistance: totalDistance,
	}
	if totalHours > 0 {
		stat.AverageSpeed = speedKmh(totalDistance, totalHours)
	}
	return stat, nil
}

// averageSpeed computes a single run's speed in km/h, or 0 for unfinished
// runs, missing or zero distance, and non-positive durations.
func averageSpeed(run Run) float64 {
	if run.Distance == nil || *run.Distance == 0 || run.FinishTime == nil {
		return 0
	}
	hours := run.FinishTime.Sub(run.StartTime).Hours()
	if hours <= 0 {
		return 0
	}
	return speedKmh(*run.Distance, hours)
}

func speedKmh(distanceMeters, durationHours float64) float64 {
	return distanceMeters / (durationHours * 1000)
}
