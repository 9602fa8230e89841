package domain

import (
	"context"
	"time"
)

// fakeUserRepo is a map-backed UserRepository used across the service tests.
type fakeUserRepo struct {
	nextID int64
	users  map[int64]User
	err    error
}

func newFakeUserRepo(users ...User) *fakeUserRepo {
	repo := &fakeUserRepo{nextID: 1, users: make(map[int64]User)}
	for _, user := range users {
		if user.ID >= repo.nextID {
			repo.nextID = user.ID + 1
		}
		repo.users[user.ID] = user
	}
	return repo
}

func (f *fakeUserRepo) FindAll(ctx context.Context) ([]User, error) {
	if f.err != nil {
		return nil, f.err
	}
	users := make([]User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}
	return users, nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user User) (*User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return &user, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user User) (*User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.users[user.ID]; !ok {
		return nil, nil
	}
	f.users[user.ID] = user
	return &user, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.users[id]; !ok {
		return false, nil
	}
	delete(f.users, id)
	return true, nil
}

// fakeRunRepo is a slice-backed RunRepository. The window arguments of the
// last FindByUserInWindow call are recorded for assertions.
type fakeRunRepo struct {
	nextID    int64
	runs      []Run
	createErr error
	lastFrom  *time.Time
	lastTo    *time.Time
}

func newFakeRunRepo(runs ...Run) *fakeRunRepo {
	repo := &fakeRunRepo{nextID: 1}
	for _, run := range runs {
		if run.ID >= repo.nextID {
			repo.nextID = run.ID + 1
		}
		repo.runs = append(repo.runs, run)
	}
	return repo
}

func (f *fakeRunRepo) Create(ctx context.Context, run Run) (*Run, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	run.ID = f.nextID
	f.nextID++
	f.runs = append(f.runs, run)
	return &run, nil
}

func (f *fakeRunRepo) Update(ctx context.Context, run Run) (*Run, error) {
	for i := range f.runs {
		if f.runs[i].ID == run.ID {
			f.runs[i] = run
			return &run, nil
		}
	}
	return &run, nil
}

func (f *fakeRunRepo) FindActiveByUser(ctx context.Context, userID int64) (*Run, error) {
	for _, run := range f.runs {
		if run.UserID == userID && run.FinishTime == nil {
			found := run
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeRunRepo) FindByUserInWindow(ctx context.Context, userID int64, from, to *time.Time) ([]Run, error) {
	f.lastFrom = from
	f.lastTo = to
	runs := make([]Run, 0)
	for _, run := range f.runs {
		if run.UserID == userID {
			runs = append(runs, run)
		}
	}
	return runs, nil
}

func ptrFloat(v float64) *float64 { return &v }

func ptrTime(v time.Time) *time.Time { return &v }
