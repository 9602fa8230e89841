// Package postgres provides pgx-backed persistence for users and runs.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/runtracker/internal/domain"
)

// UserRepository provides Postgres-backed persistence for user profiles.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, first_name, last_name, birth_date, sex, created_at, updated_at`

// FindAll returns every stored user ordered by id.
func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var user domain.User
		if err := scanUser(rows, &user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// FindByID returns the user with the given id, or nil when absent.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`

	row := r.pool.QueryRow(ctx, query, id)
	var user domain.User
	if err := scanUser(row, &user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create inserts the user and returns it with the assigned id.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	const query = `INSERT INTO users (first_name, last_name, birth_date, sex, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`

	row := r.pool.QueryRow(ctx, query,
		user.FirstName,
		user.LastName,
		user.BirthDate,
		user.Sex,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err := row.Scan(&user.ID); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

// Update replaces the mutable fields of an existing user, returning nil
// when no row matched.
func (r *UserRepository) Update(ctx context.Context, user domain.User) (*domain.User, error) {
	const query = `UPDATE users SET first_name=$2, last_name=$3, birth_date=$4, sex=$5, updated_at=$6
        WHERE id=$1`

	tag, err := r.pool.Exec(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.BirthDate,
		user.Sex,
		user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return &user, nil
}

// Delete removes the user with the given id, reporting whether a row was
// removed.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanUser(row pgx.Row, user *domain.User) error {
	return row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.BirthDate,
		&user.Sex,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}
