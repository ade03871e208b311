package testkit

import (
	"context"
	stdtesting "testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/deicod/blogapi/internal/orm/pg"
	"github.com/deicod/blogapi/internal/orm/store"
)

// Statements issued by the store, as matched by QueryMatcherEqual.
const (
	SelectUsersSQL    = "SELECT id, name, email FROM users ORDER BY id ASC"
	SelectUserByIDSQL = "SELECT id, name, email FROM users WHERE id = $1"
	SelectFeedSQL     = "SELECT id, title, content, published, author_id FROM posts WHERE published = $1 ORDER BY id ASC"
	InsertUserSQL     = "INSERT INTO users (name, email) VALUES ($1, $2) RETURNING id, name, email"
	InsertDraftSQL    = "INSERT INTO posts (title, content, published, author_id) SELECT $1, $2, false, id FROM users WHERE email = $3 RETURNING id, title, content, published, author_id"
	SetPublishedSQL   = "UPDATE posts SET published = $1 WHERE id = $2 RETURNING id, title, content, published, author_id"
)

var (
	userColumns = []string{"id", "name", "email"}
	postColumns = []string{"id", "title", "content", "published", "author_id"}
)

// Sandbox encapsulates a mocked Postgres pool and cancellable context for tests.
type Sandbox struct {
	ctx    context.Context
	cancel context.CancelFunc
	mock   pgxmock.PgxPoolIface
	db     *pg.DB
	orm    *store.Client
}

// NewPostgresSandbox returns a sandbox backed by pgxmock with QueryMatcherEqual semantics.
//
// Tests can configure expectations directly on the returned sandbox via the Mock method or
// the Expect helpers, and obtain the store client through ORM().
func NewPostgresSandbox(tb stdtesting.TB) *Sandbox {
	tb.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	if err != nil {
		cancel()
		tb.Fatalf("pgxmock.NewPool: %v", err)
	}
	db := &pg.DB{Pool: mock}
	sandbox := &Sandbox{
		ctx:    ctx,
		cancel: cancel,
		mock:   mock,
		db:     db,
		orm:    store.New(db),
	}
	tb.Cleanup(sandbox.Close)
	return sandbox
}

// Context returns the sandbox context.
func (s *Sandbox) Context() context.Context {
	if s == nil {
		return context.Background()
	}
	return s.ctx
}

// Mock exposes the underlying pgxmock pool for expectation management.
func (s *Sandbox) Mock() pgxmock.PgxPoolIface {
	if s == nil {
		return nil
	}
	return s.mock
}

// DB returns the pg.DB wrapper bound to the sandbox pool.
func (s *Sandbox) DB() *pg.DB {
	if s == nil {
		return nil
	}
	return s.db
}

// ORM returns the store client bound to the sandbox.
func (s *Sandbox) ORM() *store.Client {
	if s == nil {
		return nil
	}
	return s.orm
}

// Close releases sandbox resources. Tests typically rely on the registered cleanup to invoke it.
func (s *Sandbox) Close() {
	if s == nil {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
}

// ExpectationsWereMet fails the supplied test if outstanding pgxmock expectations remain.
func (s *Sandbox) ExpectationsWereMet(tb stdtesting.TB) {
	if s == nil {
		return
	}
	tb.Helper()
	if err := s.mock.ExpectationsWereMet(); err != nil {
		tb.Fatalf("pgx expectations: %v", err)
	}
}

func userRows(users ...store.User) *pgxmock.Rows {
	rows := pgxmock.NewRows(userColumns)
	for _, u := range users {
		rows.AddRow(u.ID, u.Name, u.Email)
	}
	return rows
}

func postRows(posts ...store.Post) *pgxmock.Rows {
	rows := pgxmock.NewRows(postColumns)
	for _, p := range posts {
		rows.AddRow(p.ID, p.Title, p.Content, p.Published, p.AuthorID)
	}
	return rows
}

// ExpectUsers expects the users listing and returns users.
func (s *Sandbox) ExpectUsers(users ...store.User) {
	s.mock.ExpectQuery(SelectUsersSQL).WillReturnRows(userRows(users...))
}

// ExpectUserByID expects a lookup of id; a nil user yields no row.
func (s *Sandbox) ExpectUserByID(id int, user *store.User) {
	if user == nil {
		s.mock.ExpectQuery(SelectUserByIDSQL).WithArgs(id).WillReturnRows(userRows())
		return
	}
	s.mock.ExpectQuery(SelectUserByIDSQL).WithArgs(id).WillReturnRows(userRows(*user))
}

// ExpectFeed expects the published posts query and returns posts.
func (s *Sandbox) ExpectFeed(posts ...store.Post) {
	s.mock.ExpectQuery(SelectFeedSQL).WithArgs(true).WillReturnRows(postRows(posts...))
}

// ExpectSignup expects the insert of user and echoes it back.
func (s *Sandbox) ExpectSignup(user store.User) {
	s.mock.ExpectQuery(InsertUserSQL).WithArgs(user.Name, user.Email).WillReturnRows(userRows(user))
}

// ExpectSignupError expects an insert for email failing with err.
func (s *Sandbox) ExpectSignupError(name *string, email string, err error) {
	s.mock.ExpectQuery(InsertUserSQL).WithArgs(name, email).WillReturnError(err)
}

// ExpectCreateDraft expects a draft insert by authorEmail; a nil post means
// no user owns the email.
func (s *Sandbox) ExpectCreateDraft(title string, content *string, authorEmail string, post *store.Post) {
	exp := s.mock.ExpectQuery(InsertDraftSQL).WithArgs(title, content, authorEmail)
	if post == nil {
		exp.WillReturnRows(postRows())
		return
	}
	exp.WillReturnRows(postRows(*post))
}

// ExpectPublish expects the published flag update on id; a nil post means no
// such post exists.
func (s *Sandbox) ExpectPublish(id int, post *store.Post) {
	exp := s.mock.ExpectQuery(SetPublishedSQL).WithArgs(true, id)
	if post == nil {
		exp.WillReturnRows(postRows())
		return
	}
	exp.WillReturnRows(postRows(*post))
}
