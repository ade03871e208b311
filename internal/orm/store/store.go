// Package store is the typed persistence client for users and posts.
//
// Every method issues exactly one SQL statement, so each call is atomic at the
// database. Store errors are returned unchanged apart from wrapping
// pgx.ErrNoRows into the sentinels below.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/deicod/blogapi/internal/orm/pg"
)

var (
	// ErrNotFound reports that no row matched the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrAuthorNotFound reports that no user owns the email a draft referenced.
	ErrAuthorNotFound = errors.New("author not found")
)

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err carries a Postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// User mirrors a row of the users table.
type User struct {
	ID    int     `json:"id"`
	Name  *string `json:"name"`
	Email string  `json:"email"`
}

// Post mirrors a row of the posts table.
type Post struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	Content   *string `json:"content"`
	Published bool    `json:"published"`
	AuthorID  int     `json:"-"`
}

// Client is the shared handle constructed once per process.
type Client struct {
	db    *pg.DB
	users *UserClient
	posts *PostClient
}

// New binds a client to db.
func New(db *pg.DB) *Client {
	return &Client{
		db:    db,
		users: &UserClient{db: db},
		posts: &PostClient{db: db},
	}
}

// DB exposes the underlying database handle.
func (c *Client) DB() *pg.DB { return c.db }

// Users returns the users table client.
func (c *Client) Users() *UserClient { return c.users }

// Posts returns the posts table client.
func (c *Client) Posts() *PostClient { return c.posts }
