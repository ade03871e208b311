package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/deicod/blogapi/internal/orm/pg"
	"github.com/deicod/blogapi/internal/orm/runtime"
)

const usersTable = "users"

var userColumns = []string{"id", "name", "email"}

const insertUserSQL = "INSERT INTO users (name, email) VALUES ($1, $2) RETURNING id, name, email"

// UserClient reads and writes the users table.
type UserClient struct {
	db *pg.DB
}

// List returns every user ordered by id.
func (c *UserClient) List(ctx context.Context) ([]*User, error) {
	rows, err := c.db.Select(ctx, runtime.SelectSpec{
		Table:   usersTable,
		Columns: userColumns,
		Orders:  []runtime.Order{{Column: "id", Direction: runtime.SortAsc}},
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ByID returns the user with the given id, or nil when none exists.
func (c *UserClient) ByID(ctx context.Context, id int) (*User, error) {
	row := c.db.SelectRow(ctx, runtime.SelectSpec{
		Table:      usersTable,
		Columns:    userColumns,
		Predicates: []runtime.Predicate{{Column: "id", Operator: runtime.OpEqual, Value: id}},
	})
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a user. A duplicate email fails with the store's unique
// violation and inserts nothing.
func (c *UserClient) Create(ctx context.Context, name *string, email string) (*User, error) {
	row := c.db.QueryRow(ctx, runtime.OperationInsert, usersTable, insertUserSQL, name, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("create user %q: %w", email, err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email); err != nil {
		return nil, err
	}
	return &u, nil
}
