package resolvers

import (
	"context"

	"github.com/deicod/blogapi/internal/graphql"
)

func (r *mutationResolver) SignupUser(ctx context.Context, name *string, email string) (*graphql.User, error) {
	record, err := r.ORM.CreateUser(ctx, name, email)
	if err != nil {
		return nil, err
	}
	return toGraphQLUser(record), nil
}

func (r *mutationResolver) CreateDraft(ctx context.Context, title string, content *string, authorEmail string) (*graphql.Post, error) {
	record, err := r.ORM.CreatePost(ctx, title, content, authorEmail)
	if err != nil {
		return nil, err
	}
	return toGraphQLPost(record), nil
}

// Publish marks the post as published. Publishing an already published post
// returns it unchanged.
func (r *mutationResolver) Publish(ctx context.Context, postID int) (*graphql.Post, error) {
	record, err := r.ORM.SetPostPublished(ctx, postID, true)
	if err != nil {
		return nil, err
	}
	return toGraphQLPost(record), nil
}
