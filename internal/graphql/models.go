package graphql

import "context"

type User struct {
	ID    int     `json:"id"`
	Name  *string `json:"name"`
	Email string  `json:"email"`
}

type Post struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	Content   *string `json:"content"`
	Published bool    `json:"published"`
}

// Config carries the dependencies used to build the executable schema.
type Config struct {
	Resolvers ResolverRoot
}

type ResolverRoot interface {
	Query() QueryResolver
	Mutation() MutationResolver
}

type QueryResolver interface {
	Users(ctx context.Context) ([]*User, error)
	User(ctx context.Context, id int) (*User, error)
	Feed(ctx context.Context) ([]*Post, error)
}

type MutationResolver interface {
	SignupUser(ctx context.Context, name *string, email string) (*User, error)
	CreateDraft(ctx context.Context, title string, content *string, authorEmail string) (*Post, error)
	Publish(ctx context.Context, postID int) (*Post, error)
}
