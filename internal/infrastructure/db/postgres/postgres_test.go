package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/99minutos/secure-blog/internal/core/domain"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

var postColumns = []string{"id", "subject", "content", "created", "permalink"}

func TestPostRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(insertPostQuery)).
		WithArgs("hello", "world", created).
		WillReturnRows(sqlmock.NewRows(postColumns).AddRow(int64(7), "hello", "world", created, "7"))

	got, err := repo.Create(context.Background(), &domain.Post{Subject: "hello", Content: "world", Created: created})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 7 || got.Permalink != "7" || !got.Created.Equal(created) {
		t.Fatalf("unexpected post: %+v", got)
	}
	expectationsMet(t, mock)
}

func TestPostRepository_Create_DBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(insertPostQuery)).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &domain.Post{Subject: "s", Content: "c"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostRepository_FindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(selectPostByIDQuery)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(postColumns).AddRow(int64(3), "s", "c", created, "3"))

	got, err := repo.FindByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got.ID != 3 || got.Subject != "s" {
		t.Fatalf("unexpected post: %+v", got)
	}
	expectationsMet(t, mock)
}

func TestPostRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectPostByIDQuery)).
		WithArgs(int64(999999)).
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.FindByID(context.Background(), 999999); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestPostRepository_Recent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(postColumns).
		AddRow(int64(2), "b", "bb", t0.Add(time.Minute), "2").
		AddRow(int64(1), "a", "aa", t0, "1")
	mock.ExpectQuery(regexp.QuoteMeta(selectRecentPostsQuery)).
		WithArgs(domain.TopListingSize).
		WillReturnRows(rows)

	got, err := repo.Recent(context.Background(), domain.TopListingSize)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 1 {
		t.Fatalf("unexpected posts: %+v", got)
	}
	expectationsMet(t, mock)
}

func TestPostRepository_Recent_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectRecentPostsQuery)).
		WillReturnRows(sqlmock.NewRows(postColumns))

	got, err := repo.Recent(context.Background(), domain.TopListingSize)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestCredentialRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCredentialRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(insertCredentialQuery)).
		WithArgs("tok", "salt,hash", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	got, err := repo.Create(context.Background(), &domain.Credential{Username: "tok", Password: "salt,hash", CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 42 || got.Username != "tok" {
		t.Fatalf("unexpected credential: %+v", got)
	}
	expectationsMet(t, mock)
}

func TestCredentialRepository_Create_UniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCredentialRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(insertCredentialQuery)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "credentials_username_key"})

	_, err := repo.Create(context.Background(), &domain.Credential{Username: "tok", Password: "salt,hash"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestCredentialRepository_FindByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCredentialRepository(db)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(selectCredentialQuery)).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "created_at"}).
			AddRow(int64(1), "tok", "salt,hash", at))

	got, err := repo.FindByUsername(context.Background(), "tok")
	if err != nil {
		t.Fatalf("FindByUsername error: %v", err)
	}
	if got.Password != "salt,hash" || !got.CreatedAt.Equal(at) {
		t.Fatalf("unexpected credential: %+v", got)
	}
	expectationsMet(t, mock)
}

func TestCredentialRepository_FindByUsername_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCredentialRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectCredentialQuery)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.FindByUsername(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestMigrate_UsesEmbeddedDir(t *testing.T) {
	db, _ := newMockDB(t)

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate error: %v", err)
	}
	if gotDir != migrationsDir {
		t.Fatalf("expected dir %q, got %q", migrationsDir, gotDir)
	}

	entries, err := migrations.ReadDir(migrationsDir)
	if err != nil || len(entries) == 0 {
		t.Fatalf("expected embedded migrations, got %v (err=%v)", entries, err)
	}
}

func TestMigrate_PropagatesError(t *testing.T) {
	db, _ := newMockDB(t)

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	if err := Migrate(context.Background(), db); err == nil {
		t.Fatalf("expected error")
	}
}
