package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/runtracker/internal/domain"
)

// uniqueViolation is the Postgres error code raised by the partial unique
// index guarding the one-active-run-per-user invariant.
const uniqueViolation = "23505"

// RunRepository provides Postgres-backed persistence for runs.
type RunRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository constructs a RunRepository.
func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

const runColumns = `id, user_id, start_time, start_latitude, start_longitude, finish_time, finish_latitude, finish_longitude, distance`

// Create inserts the run and returns it with the assigned id. A concurrent
// insert racing past the service-level check trips the partial unique index
// and surfaces as domain.ErrActiveRunExists.
func (r *RunRepository) Create(ctx context.Context, run domain.Run) (*domain.Run, error) {
	const query = `INSERT INTO runs (user_id, start_time, start_latitude, start_longitude, finish_time, finish_latitude, finish_longitude, distance)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`

	row := r.pool.QueryRow(ctx, query,
		run.UserID,
		run.StartTime,
		run.StartLatitude,
		run.StartLongitude,
		run.FinishTime,
		run.FinishLatitude,
		run.FinishLongitude,
		run.Distance,
	)
	if err := row.Scan(&run.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrActiveRunExists
		}
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &run, nil
}

// Update persists the finish fields of an existing run.
func (r *RunRepository) Update(ctx context.Context, run domain.Run) (*domain.Run, error) {
	const query = `UPDATE runs SET finish_time=$2, finish_latitude=$3, finish_longitude=$4, distance=$5
        WHERE id=$1`

	tag, err := r.pool.Exec(ctx, query,
		run.ID,
		run.FinishTime,
		run.FinishLatitude,
		run.FinishLongitude,
		run.Distance,
	)
	if err != nil {
		return nil, fmt.Errorf("update run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("update run: no row with id %d", run.ID)
	}
	return &run, nil
}

// FindActiveByUser returns the user's unfinished run, or nil when none
// exists. The partial index on (user_id) WHERE finish_time IS NULL keeps
// this lookup independent of history length.
func (r *RunRepository) FindActiveByUser(ctx context.Context, userID int64) (*domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE user_id=$1 AND finish_time IS NULL`

	row := r.pool.QueryRow(ctx, query, userID)
	var run domain.Run
	if err := scanRun(row, &run); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// FindByUserInWindow returns the user's runs whose start time falls inside
// the optional window: inclusive between when both bounds are set,
// at-or-after for a lower bound alone, strictly-before for an upper bound
// alone.
func (r *RunRepository) FindByUserInWindow(ctx context.Context, userID int64, from, to *time.Time) ([]domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE user_id=$1`
	args := []interface{}{userID}

	switch {
	case from != nil && to != nil:
		query += ` AND start_time BETWEEN $2 AND $3`
		args = append(args, *from, *to)
	case from != nil:
		query += ` AND start_time >= $2`
		args = append(args, *from)
	case to != nil:
		query += ` AND start_time < $2`
		args = append(args, *to)
	}

	query += ` ORDER BY start_time, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]domain.Run, 0)
	for rows.Next() {
		var run domain.Run
		if err := scanRun(rows, &run); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.Row, run *domain.Run) error {
	return row.Scan(
		&run.ID,
		&run.UserID,
		&run.StartTime,
		&run.StartLatitude,
		&run.StartLongitude,
		&run.FinishTime,
		&run.FinishLatitude,
		&run.FinishLongitude,
		&run.Distance,
	)
}
