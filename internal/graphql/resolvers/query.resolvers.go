package resolvers

import (
	"context"

	"github.com/deicod/blogapi/internal/graphql"
)

func (r *queryResolver) Users(ctx context.Context) ([]*graphql.User, error) {
	records, err := r.ORM.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]*graphql.User, len(records))
	for i, record := range records {
		users[i] = toGraphQLUser(record)
	}
	return users, nil
}

func (r *queryResolver) User(ctx context.Context, id int) (*graphql.User, error) {
	record, err := r.ORM.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toGraphQLUser(record), nil
}

func (r *queryResolver) Feed(ctx context.Context) ([]*graphql.Post, error) {
	records, err := r.ORM.PublishedPosts(ctx)
	if err != nil {
		return nil, err
	}
	posts := make([]*graphql.Post, len(records))
	for i, record := range records {
		posts[i] = toGraphQLPost(record)
	}
	return posts, nil
}
