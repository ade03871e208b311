package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/deicod/blogapi/internal/orm/pg"
	"github.com/deicod/blogapi/internal/orm/runtime"
)

const postsTable = "posts"

var postColumns = []string{"id", "title", "content", "published", "author_id"}

const (
	// The author is resolved by email inside the INSERT so a missing user
	// produces zero rows instead of a dangling post.
	insertDraftSQL = "INSERT INTO posts (title, content, published, author_id) " +
		"SELECT $1, $2, false, id FROM users WHERE email = $3 " +
		"RETURNING id, title, content, published, author_id"
	setPublishedSQL = "UPDATE posts SET published = $1 WHERE id = $2 " +
		"RETURNING id, title, content, published, author_id"
)

// PostClient reads and writes the posts table.
type PostClient struct {
	db *pg.DB
}

// Published returns the posts whose published flag is set, ordered by id.
func (c *PostClient) Published(ctx context.Context) ([]*Post, error) {
	rows, err := c.db.Select(ctx, runtime.SelectSpec{
		Table:      postsTable,
		Columns:    postColumns,
		Predicates: []runtime.Predicate{{Column: "published", Operator: runtime.OpEqual, Value: true}},
		Orders:     []runtime.Order{{Column: "id", Direction: runtime.SortAsc}},
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]*Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CreateDraft inserts an unpublished post owned by the user with authorEmail.
func (c *PostClient) CreateDraft(ctx context.Context, title string, content *string, authorEmail string) (*Post, error) {
	row := c.db.QueryRow(ctx, runtime.OperationInsert, postsTable, insertDraftSQL, title, content, authorEmail)
	p, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("create draft: no user with email %q: %w", authorEmail, ErrAuthorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	return p, nil
}

// SetPublished sets the published flag on post id. Repeating the call with the
// same value is harmless.
func (c *PostClient) SetPublished(ctx context.Context, id int, value bool) (*Post, error) {
	row := c.db.QueryRow(ctx, runtime.OperationUpdate, postsTable, setPublishedSQL, value, id)
	p, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update post %d: %w", id, err)
	}
	return p, nil
}

func scanPost(row pgx.Row) (*Post, error) {
	var p Post
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Published, &p.AuthorID); err != nil {
		return nil, err
	}
	return &p, nil
}
