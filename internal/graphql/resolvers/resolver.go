package resolvers

import (
	"context"

	"github.com/deicod/blogapi/internal/graphql"
	"github.com/deicod/blogapi/internal/orm/store"
)

// Store is the persistence contract the resolvers depend on. *store.Client
// satisfies it.
type Store interface {
	ListUsers(ctx context.Context) ([]*store.User, error)
	UserByID(ctx context.Context, id int) (*store.User, error)
	PublishedPosts(ctx context.Context) ([]*store.Post, error)
	CreateUser(ctx context.Context, name *string, email string) (*store.User, error)
	CreatePost(ctx context.Context, title string, content *string, authorEmail string) (*store.Post, error)
	SetPostPublished(ctx context.Context, id int, value bool) (*store.Post, error)
}

var _ Store = (*store.Client)(nil)

// Resolver wires GraphQL resolvers into the executable schema.
type Resolver struct {
	ORM Store
}

// New creates a resolver root bound to the provided store.
func New(orm Store) *Resolver {
	return &Resolver{ORM: orm}
}

func (r *Resolver) Mutation() graphql.MutationResolver { return &mutationResolver{r} }
func (r *Resolver) Query() graphql.QueryResolver       { return &queryResolver{r} }

type mutationResolver struct{ *Resolver }
type queryResolver struct{ *Resolver }

func toGraphQLUser(record *store.User) *graphql.User {
	if record == nil {
		return nil
	}
	return &graphql.User{ID: record.ID, Name: record.Name, Email: record.Email}
}

func toGraphQLPost(record *store.Post) *graphql.Post {
	if record == nil {
		return nil
	}
	return &graphql.Post{
		ID:        record.ID,
		Title:     record.Title,
		Content:   record.Content,
		Published: record.Published,
	}
}
