// Package memory provides mutex-guarded map repositories for local
// development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"example.com/runtracker/internal/domain"
)

// UserRepository stores users in memory.
type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]domain.User
}

// NewUserRepository constructs an empty UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		nextID: 1,
		users:  make(map[int64]domain.User),
	}
}

// FindAll implements domain.UserRepository.
func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// FindByID implements domain.UserRepository.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// Create implements domain.UserRepository.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return &user, nil
}

// Update implements domain.UserRepository.
func (r *UserRepository) Update(ctx context.Context, user domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return nil, nil
	}
	r.users[user.ID] = user
	return &user, nil
}

// Delete implements domain.UserRepository.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

// RunRepository stores runs in memory.
type RunRepository struct {
	mu     sync.RWMutex
	nextID int64
	runs   map[int64]domain.Run
}

// NewRunRepository constructs an empty RunRepository.
func NewRunRepository() *RunRepository {
	return &RunRepository{
		nextID: 1,
		runs:   make(map[int64]domain.Run),
	}
}

// Create implements domain.RunRepository.
func (r *RunRepository) Create(ctx context.Context, run domain.Run) (*domain.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.FinishTime == nil {
		for _, existing := range r.runs {
			if existing.UserID == run.UserID && existing.FinishTime == nil {
				return nil, domain.ErrActiveRunExists
			}
		}
	}

	run.ID = r.nextID
	r.nextID++
	r.runs[run.ID] = run
	return &run, nil
}

// Update implements domain.RunRepository.
func (r *RunRepository) Update(ctx context.Context, run domain.Run) (*domain.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs[run.ID] = run
	return &run, nil
}

// FindActiveByUser implements domain.RunRepository.
func (r *RunRepository) FindActiveByUser(ctx context.Context, userID int64) (*domain.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, run := range r.runs {
		if run.UserID == userID && run.FinishTime == nil {
			found := run
			return &found, nil
		}
	}
	return nil, nil
}

// FindByUserInWindow implements domain.RunRepository.
func (r *RunRepository) FindByUserInWindow(ctx context.Context, userID int64, from, to *time.Time) ([]domain.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]domain.Run, 0)
	for _, run := range r.runs {
		if run.UserID != userID {
			continue
		}
		if !inWindow(run.StartTime, from, to) {
			continue
		}
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartTime.Equal(runs[j].StartTime) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].StartTime.Before(runs[j].StartTime)
	})
	return runs, nil
}

func inWindow(start time.Time, from, to *time.Time) bool {
	switch {
	case from != nil && to != nil:
		return !start.Before(*from) && !start.After(*to)
	case from != nil:
		return !start.Before(*from)
	case to != nil:
		return start.Before(*to)
	default:
		return true
	}
}
