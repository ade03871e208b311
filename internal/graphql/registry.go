// Package graphql declares the API contract as per-field records and turns
// them into an executable schema and its SDL.
package graphql

import (
	"context"
	"fmt"
)

// TypeRef names an output type. List items are always non-null; Nullable
// applies to the outermost type.
type TypeRef struct {
	Name     string
	List     bool
	Nullable bool
}

// Arg declares a scalar field argument.
type Arg struct {
	Name     string
	Type     string
	Required bool
}

// ResolveFunc computes a root field from its coerced arguments.
type ResolveFunc func(ctx context.Context, args Args) (any, error)

// Field is one entry in an object's field table. Object fields without a
// Resolve read the matching property of the parent value.
type Field struct {
	Name    string
	Type    TypeRef
	Args    []Arg
	Resolve ResolveFunc
}

// Object is a named output type.
type Object struct {
	Name   string
	Fields []Field
}

// Args holds argument values after schema coercion.
type Args map[string]any

// Int returns a required integer argument.
func (a Args) Int(name string) (int, error) {
	v, ok := a[name].(int)
	if !ok {
		return 0, fmt.Errorf("argument %q: expected Int, got %T", name, a[name])
	}
	return v, nil
}

// String returns a required string argument.
func (a Args) String(name string) (string, error) {
	v, ok := a[name].(string)
	if !ok {
		return "", fmt.Errorf("argument %q: expected String, got %T", name, a[name])
	}
	return v, nil
}

// OptionalString returns nil when the argument was omitted or null.
func (a Args) OptionalString(name string) *string {
	v, ok := a[name].(string)
	if !ok {
		return nil
	}
	return &v
}

func nonNull(name string) TypeRef  { return TypeRef{Name: name} }
func nullable(name string) TypeRef { return TypeRef{Name: name, Nullable: true} }
func listOf(name string) TypeRef   { return TypeRef{Name: name, List: true} }

// Objects returns the full contract in declaration order. root may be nil when
// only the shape is needed, as for SDL rendering.
func Objects(root ResolverRoot) []Object {
	var q QueryResolver
	var m MutationResolver
	if root != nil {
		q = root.Query()
		m = root.Mutation()
	}
	return []Object{
		{
			Name: "User",
			Fields: []Field{
				{Name: "id", Type: nonNull("Int")},
				{Name: "name", Type: nullable("String")},
				{Name: "email", Type: nonNull("String")},
			},
		},
		{
			Name: "Post",
			Fields: []Field{
				{Name: "id", Type: nonNull("Int")},
				{Name: "title", Type: nonNull("String")},
				{Name: "content", Type: nullable("String")},
				{Name: "published", Type: nonNull("Boolean")},
			},
		},
		{Name: "Query", Fields: queryFields(q)},
		{Name: "Mutation", Fields: mutationFields(m)},
	}
}

// Root resolve funcs return an untyped nil when the resolver fails or finds
// nothing, so execution results never hold typed-nil pointers.
func queryFields(q QueryResolver) []Field {
	fields := []Field{
		{Name: "users", Type: listOf("User")},
		{Name: "user", Type: nullable("User"), Args: []Arg{{Name: "id", Type: "Int", Required: true}}},
		{Name: "feed", Type: listOf("Post")},
	}
	if q == nil {
		return fields
	}
	fields[0].Resolve = func(ctx context.Context, _ Args) (any, error) {
		users, err := q.Users(ctx)
		if err != nil {
			return nil, err
		}
		return users, nil
	}
	fields[1].Resolve = func(ctx context.Context, args Args) (any, error) {
		id, err := args.Int("id")
		if err != nil {
			return nil, err
		}
		user, err := q.User(ctx, id)
		if err != nil || user == nil {
			return nil, err
		}
		return user, nil
	}
	fields[2].Resolve = func(ctx context.Context, _ Args) (any, error) {
		posts, err := q.Feed(ctx)
		if err != nil {
			return nil, err
		}
		return posts, nil
	}
	return fields
}

func mutationFields(m MutationResolver) []Field {
	fields := []Field{
		{
			Name: "signupUser",
			Type: nonNull("User"),
			Args: []Arg{
				{Name: "name", Type: "String"},
				{Name: "email", Type: "String", Required: true},
			},
		},
		{
			Name: "createDraft",
			Type: nonNull("Post"),
			Args: []Arg{
				{Name: "title", Type: "String", Required: true},
				{Name: "content", Type: "String"},
				{Name: "authorEmail", Type: "String", Required: true},
			},
		},
		{
			Name: "publish",
			Type: nullable("Post"),
			Args: []Arg{{Name: "postId", Type: "Int", Required: true}},
		},
	}
	if m == nil {
		return fields
	}
	fields[0].Resolve = func(ctx context.Context, args Args) (any, error) {
		email, err := args.String("email")
		if err != nil {
			return nil, err
		}
		user, err := m.SignupUser(ctx, args.OptionalString("name"), email)
		if err != nil || user == nil {
			return nil, err
		}
		return user, nil
	}
	fields[1].Resolve = func(ctx context.Context, args Args) (any, error) {
		title, err := args.String("title")
		if err != nil {
			return nil, err
		}
		authorEmail, err := args.String("authorEmail")
		if err != nil {
			return nil, err
		}
		post, err := m.CreateDraft(ctx, title, args.OptionalString("content"), authorEmail)
		if err != nil || post == nil {
			return nil, err
		}
		return post, nil
	}
	fields[2].Resolve = func(ctx context.Context, args Args) (any, error) {
		id, err := args.Int("postId")
		if err != nil {
			return nil, err
		}
		post, err := m.Publish(ctx, id)
		if err != nil || post == nil {
			return nil, err
		}
		return post, nil
	}
	return fields
}
