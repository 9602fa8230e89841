package api

import (
	"time"

	"example.com/runtracker/internal/domain"
)

const birthDateLayout = "2006-01-02"

// UserRequest is the payload for creating or replacing a user. Every field
// is mandatory; an update never preserves omitted fields.
type UserRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	BirthDate string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Sex       *bool  `json:"sex" validate:"required"`
}

// UserResponse describes a stored user.
type UserResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BirthDate string `json:"birth_date"`
	Sex       bool   `json:"sex"`
}

// RunStartRequest is the payload for POST /api/v1/runs/start. Coordinates
// are pointers so that 0 remains a valid value.
type RunStartRequest struct {
	UserID         int64     `json:"user_id" validate:"required,gt=0"`
	StartTime      time.Time `json:"start_time" validate:"required"`
	StartLatitude  *float64  `json:"start_latitude" validate:"required,gte=-90,lte=90"`
	StartLongitude *float64  `json:"start_longitude" validate:"required,gte=-180,lte=180"`
}

// RunFinishRequest is the payload for POST /api/v1/runs/finish.
type RunFinishRequest struct {
	UserID          int64     `json:"user_id" validate:"required,gt=0"`
	FinishTime      time.Time `json:"finish_time" validate:"required"`
	FinishLatitude  *float64  `json:"finish_latitude" validate:"required,gte=-90,lte=90"`
	FinishLongitude *float64  `json:"finish_longitude" validate:"required,gte=-180,lte=180"`
	Distance        *float64  `json:"distance" validate:"omitempty,gte=0"`
}

// RunResponse describes a stored run.
type RunResponse struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	StartTime       time.Time  `json:"start_time"`
	StartLatitude   float64    `json:"start_latitude"`
	StartLongitude  float64    `json:"start_longitude"`
	FinishTime      *time.Time `json:"finish_time,omitempty"`
	FinishLatitude  *float64   `json:"finish_latitude,omitempty"`
	FinishLongitude *float64   `json:"finish_longitude,omitempty"`
	Distance        *float64   `json:"distance,omitempty"`
}

// RunStatisticResponse is a run annotated with its average speed in km/h.
type RunStatisticResponse struct {
	RunResponse
	AverageSpeed float64 `json:"average_speed"`
}

// StatisticResponse aggregates a user's run history.
type StatisticResponse struct {
	TotalRuns     int     `json:"total_runs"`
	TotalDistance float64 `json:"total_distance"`
	AverageSpeed  float64 `json:"average_speed"`
}

func toUserResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		BirthDate: user.BirthDate.Format(birthDateLayout),
		Sex:       user.Sex,
	}
}

func toRunResponse(run domain.Run) RunResponse {
	return RunResponse{
		ID:              run.ID,
		UserID:          run.UserID,
		StartTime:       run.StartTime,
		StartLatitude:   run.StartLatitude,
		StartLongitude:  run.StartLongitude,
		FinishTime:      run.FinishTime,
		FinishLatitude:  run.FinishLatitude,
		FinishLongitude: run.FinishLongitude,
		Distance:        run.Distance,
	}
}

func toRunStatisticResponse(stat domain.RunStatistic) RunStatisticResponse {
	return RunStatisticResponse{
		RunResponse:  toRunResponse(stat.Run),
		AverageSpeed: stat.AverageSpeed,
	}
}
