package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var userColumns = []string{"id", "hash", "name", "email", "age", "income", "goal", "profile", "created_at", "updated_at"}

// userRepo implements UserRepo with ent's SQL builder.
type userRepo struct {
	db *sql.DB
}

func (r *userRepo) Create(ctx context.Context, u *User) error {
	now := time.Now().UTC()
	query, args := builder().Insert(usersTable).
		Columns("hash", "name", "email", "age", "income", "goal", "profile", "created_at", "updated_at").
		Values(u.Hash, u.Name, u.Email, u.Age, u.Income, u.Goal, u.Profile, now, now).
		Returning("id").
		Query()
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&u.ID); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

func (r *userRepo) Get(ctx context.Context, id int) (*User, error) {
	return r.one(ctx, entsql.EQ("id", id))
}

func (r *userRepo) FindByHash(ctx context.Context, hash string) (*User, error) {
	return r.one(ctx, entsql.EQ("hash", hash))
}

func (r *userRepo) one(ctx context.Context, p *entsql.Predicate) (*User, error) {
	b := builder()
	query, args := b.Select(userColumns...).From(b.Table(usersTable)).Where(p).Limit(1).Query()
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func (r *userRepo) Update(ctx context.Context, u *User) error {
	u.UpdatedAt = time.Now().UTC()
	query, args := builder().Update(usersTable).
		Set("name", u.Name).
		Set("email", u.Email).
		Set("age", u.Age).
		Set("income", u.Income).
		Set("goal", u.Goal).
		Set("profile", u.Profile).
		Set("updated_at", u.UpdatedAt).
		Where(entsql.EQ("id", u.ID)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return expectRow(res)
}

func (r *userRepo) Delete(ctx context.Context, id int) error {
	query, args := builder().Delete(usersTable).Where(entsql.EQ("id", id)).Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectRow(res)
}

func (r *userRepo) List(ctx context.Context, limit, offset int) ([]User, error) {
	b := builder()
	sel := b.Select(userColumns...).From(b.Table(usersTable)).OrderBy(entsql.Asc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	if offset > 0 {
		if limit <= 0 {
			sel.Limit(-1)
		}
		sel.Offset(offset)
	}
	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *userRepo) All(ctx context.Context) ([]User, error) {
	return r.List(ctx, 0, 0)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Hash, &u.Name, &u.Email, &u.Age, &u.Income, &u.Goal, &u.Profile, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
