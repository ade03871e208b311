package graphql

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	gql "github.com/graphql-go/graphql"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

const contractSDL = `type User {
  id: Int!
  name: String
  email: String!
}

type Post {
  id: Int!
  title: String!
  content: String
  published: Boolean!
}

type Query {
  users: [User!]!
  user(id: Int!): User
  feed: [Post!]!
}

type Mutation {
  signupUser(name: String, email: String!): User!
  createDraft(title: String!, content: String, authorEmail: String!): Post!
  publish(postId: Int!): Post
}
`

func TestRenderSDLMatchesContract(t *testing.T) {
	if diff := cmp.Diff(contractSDL, RenderSDL(Objects(nil))); diff != "" {
		t.Fatalf("SDL mismatch (-want +got):\n%s", diff)
	}
}

func TestSDLKeepsDeclarationOrder(t *testing.T) {
	sdl, err := SDL()
	if err != nil {
		t.Fatalf("SDL: %v", err)
	}
	if diff := cmp.Diff(contractSDL, sdl); diff != "" {
		t.Fatalf("SDL mismatch (-want +got):\n%s", diff)
	}
}

func TestSDLRoundTrips(t *testing.T) {
	sdl, err := SDL()
	if err != nil {
		t.Fatalf("SDL: %v", err)
	}
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "formatted.graphql", Input: sdl})
	if err != nil {
		t.Fatalf("formatted SDL does not parse: %v\n%s", err, sdl)
	}

	want := map[string]map[string]string{
		"User":     {"id": "Int!", "name": "String", "email": "String!"},
		"Post":     {"id": "Int!", "title": "String!", "content": "String", "published": "Boolean!"},
		"Query":    {"users": "[User!]!", "user": "User", "feed": "[Post!]!"},
		"Mutation": {"signupUser": "User!", "createDraft": "Post!", "publish": "Post"},
	}
	for typeName, fields := range want {
		def := schema.Types[typeName]
		if def == nil {
			t.Fatalf("type %s missing from SDL", typeName)
		}
		var declared []string
		for _, field := range def.Fields {
			// LoadSchema adds __schema and __type to Query.
			if !strings.HasPrefix(field.Name, "__") {
				declared = append(declared, field.Name)
			}
		}
		if len(declared) != len(fields) {
			t.Fatalf("type %s: expected %d fields, got %v", typeName, len(fields), declared)
		}
		for name, typ := range fields {
			field := def.Fields.ForName(name)
			if field == nil {
				t.Fatalf("%s.%s missing", typeName, name)
			}
			if got := field.Type.String(); got != typ {
				t.Fatalf("%s.%s: expected %s, got %s", typeName, name, typ, got)
			}
		}
	}

	draft := schema.Types["Mutation"].Fields.ForName("createDraft")
	var args []string
	for _, arg := range draft.Arguments {
		args = append(args, arg.Name+":"+arg.Type.String())
	}
	if diff := cmp.Diff([]string{"title:String!", "content:String", "authorEmail:String!"}, args); diff != "" {
		t.Fatalf("createDraft args (-want +got):\n%s", diff)
	}
}

func TestNewExecutableSchemaRequiresResolvers(t *testing.T) {
	if _, err := NewExecutableSchema(Config{}); err == nil {
		t.Fatal("expected error without resolvers")
	}
}

func TestBuildSchemaRejectsUnknownTypes(t *testing.T) {
	_, err := buildSchema([]Object{{Name: "Query", Fields: []Field{{Name: "x", Type: nonNull("Missing")}}}})
	if err == nil || !strings.Contains(err.Error(), "Query.x") {
		t.Fatalf("expected unknown type error, got %v", err)
	}
	_, err = buildSchema([]Object{{Name: "Query", Fields: []Field{{Name: "x", Type: nonNull("Int"), Args: []Arg{{Name: "a", Type: "Float"}}}}}})
	if err == nil || !strings.Contains(err.Error(), `unknown scalar "Float"`) {
		t.Fatalf("expected unknown scalar error, got %v", err)
	}
}

func TestArgs(t *testing.T) {
	args := Args{"id": 3, "email": "a@b.c", "name": nil}
	if id, err := args.Int("id"); err != nil || id != 3 {
		t.Fatalf("Int: %d, %v", id, err)
	}
	if _, err := args.Int("email"); err == nil {
		t.Fatal("expected type error")
	}
	if email, err := args.String("email"); err != nil || email != "a@b.c" {
		t.Fatalf("String: %q, %v", email, err)
	}
	if args.OptionalString("name") != nil || args.OptionalString("missing") != nil {
		t.Fatal("expected nil optional strings")
	}
	if got := args.OptionalString("email"); got == nil || *got != "a@b.c" {
		t.Fatalf("OptionalString: %v", got)
	}
}

type fakeRoot struct {
	users []*User
	posts map[int]*Post
}

func (f *fakeRoot) Query() QueryResolver       { return fakeQuery{f} }
func (f *fakeRoot) Mutation() MutationResolver { return fakeMutation{f} }

type fakeQuery struct{ *fakeRoot }

func (q fakeQuery) Users(context.Context) ([]*User, error) { return q.users, nil }

func (q fakeQuery) User(_ context.Context, id int) (*User, error) {
	if id < 0 {
		return nil, errors.New("invalid id")
	}
	for _, u := range q.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (q fakeQuery) Feed(context.Context) ([]*Post, error) {
	feed := make([]*Post, 0, len(q.posts))
	for id := 1; id <= len(q.posts); id++ {
		if p := q.posts[id]; p != nil && p.Published {
			feed = append(feed, p)
		}
	}
	return feed, nil
}

type fakeMutation struct{ *fakeRoot }

func (m fakeMutation) SignupUser(_ context.Context, name *string, email string) (*User, error) {
	u := &User{ID: len(m.users) + 1, Name: name, Email: email}
	m.users = append(m.users, u)
	return u, nil
}

func (m fakeMutation) CreateDraft(_ context.Context, title string, content *string, _ string) (*Post, error) {
	p := &Post{ID: len(m.posts) + 1, Title: title, Content: content}
	m.posts[p.ID] = p
	return p, nil
}

func (m fakeMutation) Publish(_ context.Context, id int) (*Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, errors.New("post not found")
	}
	p.Published = true
	return p, nil
}

func execute(t *testing.T, schema gql.Schema, query string, vars map[string]any) *gql.Result {
	t.Helper()
	return gql.Do(gql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: vars,
		Context:        context.Background(),
	})
}

func newTestSchema(t *testing.T, root *fakeRoot) gql.Schema {
	t.Helper()
	schema, err := NewExecutableSchema(Config{Resolvers: root})
	if err != nil {
		t.Fatalf("NewExecutableSchema: %v", err)
	}
	return schema
}

func TestExecuteQueriesThroughResolvers(t *testing.T) {
	alice := "Alice"
	root := &fakeRoot{users: []*User{{ID: 1, Name: &alice, Email: "alice@example.com"}, {ID: 2, Email: "bob@example.com"}}, posts: map[int]*Post{}}
	schema := newTestSchema(t, root)

	res := execute(t, schema, `{ users { id name email } user(id: 42) { id } }`, nil)
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	want := map[string]any{
		"users": []any{
			map[string]any{"id": 1, "name": "Alice", "email": "alice@example.com"},
			map[string]any{"id": 2, "name": nil, "email": "bob@example.com"},
		},
		"user": nil,
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestFailedFieldLeavesSiblingsIntact(t *testing.T) {
	root := &fakeRoot{users: []*User{{ID: 1, Email: "a@b.c"}}, posts: map[int]*Post{}}
	schema := newTestSchema(t, root)

	res := execute(t, schema, `{ user(id: -1) { id } users { email } }`, nil)
	if len(res.Errors) != 1 || res.Errors[0].Message != "invalid id" {
		t.Fatalf("expected one user error, got %v", res.Errors)
	}
	data, ok := res.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected partial data, got %#v", res.Data)
	}
	if data["user"] != nil {
		t.Fatalf("expected null user, got %v", data["user"])
	}
	if users, _ := data["users"].([]any); len(users) != 1 {
		t.Fatalf("expected sibling users field, got %v", data["users"])
	}
}

func TestMutationsCoerceArguments(t *testing.T) {
	root := &fakeRoot{posts: map[int]*Post{}}
	schema := newTestSchema(t, root)

	res := execute(t, schema, `mutation($email: String!) { signupUser(email: $email) { id name email } }`,
		map[string]any{"email": "carol@example.com"})
	if len(res.Errors) > 0 {
		t.Fatalf("signupUser errors: %v", res.Errors)
	}
	want := map[string]any{"signupUser": map[string]any{"id": 1, "name": nil, "email": "carol@example.com"}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("signupUser (-want +got):\n%s", diff)
	}

	res = execute(t, schema, `mutation { createDraft(title: "Hello", authorEmail: "carol@example.com") { id published content } }`, nil)
	if len(res.Errors) > 0 {
		t.Fatalf("createDraft errors: %v", res.Errors)
	}
	want = map[string]any{"createDraft": map[string]any{"id": 1, "published": false, "content": nil}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("createDraft (-want +got):\n%s", diff)
	}

	res = execute(t, schema, `mutation($id: Int!) { publish(postId: $id) { id published } }`, map[string]any{"id": 1})
	if len(res.Errors) > 0 {
		t.Fatalf("publish errors: %v", res.Errors)
	}
	want = map[string]any{"publish": map[string]any{"id": 1, "published": true}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("publish (-want +got):\n%s", diff)
	}

	res = execute(t, schema, `{ feed { id title } }`, nil)
	want = map[string]any{"feed": []any{map[string]any{"id": 1, "title": "Hello"}}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("feed (-want +got):\n%s", diff)
	}
}

func TestPublishMissingPostIsFieldError(t *testing.T) {
	schema := newTestSchema(t, &fakeRoot{posts: map[int]*Post{}})

	res := execute(t, schema, `mutation { publish(postId: 9) { id } }`, nil)
	if len(res.Errors) != 1 {
		t.Fatalf("expected one error, got %v", res.Errors)
	}
	if diff := cmp.Diff(map[string]any{"publish": nil}, res.Data); diff != "" {
		t.Fatalf("publish data (-want +got):\n%s", diff)
	}
}

func TestMissingRequiredArgumentIsRejected(t *testing.T) {
	schema := newTestSchema(t, &fakeRoot{posts: map[int]*Post{}})

	res := execute(t, schema, `mutation { signupUser(name: "x") { id } }`, nil)
	if len(res.Errors) == 0 {
		t.Fatal("expected validation error for missing email")
	}
	if res.Data != nil {
		t.Fatalf("expected no data, got %v", res.Data)
	}
}

func TestIntrospectionExposesRootFields(t *testing.T) {
	schema := newTestSchema(t, &fakeRoot{posts: map[int]*Post{}})

	res := execute(t, schema, `{ __type(name: "Mutation") { fields { name } } }`, nil)
	if len(res.Errors) > 0 {
		t.Fatalf("introspection errors: %v", res.Errors)
	}
	typ := res.Data.(map[string]any)["__type"].(map[string]any)
	names := map[string]bool{}
	for _, f := range typ["fields"].([]any) {
		names[f.(map[string]any)["name"].(string)] = true
	}
	for _, name := range []string{"signupUser", "createDraft", "publish"} {
		if !names[name] {
			t.Fatalf("introspection missing %s: %v", name, names)
		}
	}
}

func TestRootResolversReturnUntypedNil(t *testing.T) {
	resolve := map[string]ResolveFunc{}
	for _, obj := range Objects(&fakeRoot{posts: map[int]*Post{}}) {
		for _, field := range obj.Fields {
			if field.Resolve != nil {
				resolve[obj.Name+"."+field.Name] = field.Resolve
			}
		}
	}

	cases := []struct {
		field   string
		args    Args
		wantErr bool
	}{
		{field: "Query.user", args: Args{"id": -1}, wantErr: true},
		{field: "Query.user", args: Args{"id": 99}},
		{field: "Mutation.publish", args: Args{"postId": 9}, wantErr: true},
	}
	for _, tc := range cases {
		v, err := resolve[tc.field](context.Background(), tc.args)
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s(%v): unexpected error state %v", tc.field, tc.args, err)
		}
		if v != nil {
			t.Fatalf("%s(%v): expected untyped nil, got %#v", tc.field, tc.args, v)
		}
	}
}
