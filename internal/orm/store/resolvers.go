package store

import "context"

// The methods below let a Client serve directly as the GraphQL resolvers'
// persistence dependency.

// ListUsers returns every user ordered by id.
func (c *Client) ListUsers(ctx context.Context) ([]*User, error) {
	return c.users.List(ctx)
}

// UserByID returns the user with id, or nil when absent.
func (c *Client) UserByID(ctx context.Context, id int) (*User, error) {
	return c.users.ByID(ctx, id)
}

// PublishedPosts returns the feed.
func (c *Client) PublishedPosts(ctx context.Context) ([]*Post, error) {
	return c.posts.Published(ctx)
}

// CreateUser inserts a user.
func (c *Client) CreateUser(ctx context.Context, name *string, email string) (*User, error) {
	return c.users.Create(ctx, name, email)
}

// CreatePost inserts an unpublished post owned by the user with authorEmail.
func (c *Client) CreatePost(ctx context.Context, title string, content *string, authorEmail string) (*Post, error) {
	return c.posts.CreateDraft(ctx, title, content, authorEmail)
}

// SetPostPublished sets the published flag on post id.
func (c *Client) SetPostPublished(ctx context.Context, id int, value bool) (*Post, error) {
	return c.posts.SetPublished(ctx, id, value)
}
