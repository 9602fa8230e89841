package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// earthRadiusMeters is the sphere radius used for great-circle distances.
const earthRadiusMeters = 6371000.0

// ErrActiveRunExists is returned by repositories when inserting a run would
// leave a user with two unfinished runs. The postgres implementation maps
// the partial unique index violation to it.
var ErrActiveRunExists = errors.New("active run already exists for user")

// StartRunInput captures the payload for starting a run.
type StartRunInput struct {
	UserID         int64
	StartTime      time.Time
	StartLatitude  float64
	StartLongitude float64
}

// FinishRunInput captures the payload for finishing a run. Distance is
// optional; when nil it is derived from the start and finish coordinates.
type FinishRunInput struct {
	UserID          int64
	FinishTime      time.Time
	FinishLatitude  float64
	FinishLongitude float64
	Distance        *float64
}

// RunService enforces the run lifecycle: a user has at most one active run,
// and a run transitions exactly once from started to finished.
type RunService struct {
	users UserRepository
	runs  RunRepository
}

// NewRunService constructs a RunService.
func NewRunService(users UserRepository, runs RunRepository) *RunService {
	return &RunService{users: users, runs: runs}
}

// StartRun persists a new run with only the start fields populated.
func (s *RunService) StartRun(ctx context.Context, input StartRunInput) (*Run, error) {
	if err := s.resolveUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	active, err := s.runs.FindActiveByUser(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("find active run for user %d: %w", input.UserID, err)
	}
	if active != nil {
		return nil, businessRuleErrorf("other run in progress")
	}

	run := Run{
		UserID:         input.UserID,
		StartTime:      input.StartTime,
		StartLatitude:  input.StartLatitude,
		StartLongitude: input.StartLongitude,
	}

	created, err := s.runs.Create(ctx, run)
	if err != nil {
		if errors.Is(err, ErrActiveRunExists) {
			return nil, businessRuleErrorf("other run in progress")
		}
		return nil, fmt.Errorf("create run for user %d: %w", input.UserID, err)
	}
	return created, nil
}

// FinishRun completes the user's active run, deriving the distance from the
// recorded coordinates when the caller did not supply one.
func (s *RunService) FinishRun(ctx context.Context, input FinishRunInput) (*Run, error) {
	if err := s.resolveUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	active, err := s.runs.FindActiveByUser(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("find active run for user %d: %w", input.UserID, err)
	}
	if active == nil {
		return nil, businessRuleErrorf("no active run found for user with id: %d", input.UserID)
	}

	finishTime := input.FinishTime
	finishLat := input.FinishLatitude
	finishLon := input.FinishLongitude
	active.FinishTime = &finishTime
	active.FinishLatitude = &finishLat
	active.FinishLongitude = &finishLon
	if input.Distance != nil {
		distance := *input.Distance
		active.Distance = &distance
	}

	if active.Distance == nil {
		distance := Haversine(
			active.StartLatitude, active.StartLongitude,
			*active.FinishLatitude, *active.FinishLongitude,
		)
		active.Distance = &distance
	}

	if err := validateFinished(*active); err != nil {
		return nil, err
	}

	updated, err := s.runs.Update(ctx, *active)
	if err != nil {
		return nil, fmt.Errorf("update run %d: %w", active.ID, err)
	}
	return updated, nil
}

func (s *RunService) resolveUser(ctx context.Context, userID int64) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user %d: %w", userID, err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	return nil
}

func validateFinished(run Run) error {
	if run.StartTime.IsZero() {
		return businessRuleErrorf("run start time can't be empty")
	}
	if run.FinishTime == nil {
		return businessRuleErrorf("run finish time can't be empty")
	}
	if run.FinishTime.Before(run.StartTime) {
		return businessRuleErrorf("finish time must not precede start time")
	}
	if run.Distance != nil && *run.Distance < 0 {
		return businessRuleErrorf("run distance must be positive or zero")
	}
	return nil
}

// Haversine returns the great-circle distance in meters between two
// latitude/longitude points given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
		math.Sin(dLon/2)*math.Sin(dLon/2) +
		math.Sin(dLat/2)*math.Sin(dLat/2)

	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
