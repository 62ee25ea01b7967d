package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
	"github.com/oksasatya/go-library-api/internal/domain/repository"
	"github.com/oksasatya/go-library-api/pkg/apperror"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	gdb, err := OpenGorm(db, nil)
	require.NoError(t, err)
	return gdb, mock, db
}

func TestUserRepository_CreateAssignsID(t *testing.T) {
	gdb, mock, db := newMockGorm(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &entity.User{Login: "alice", PasswordHash: "h", PasswordSalt: "s", FullName: "Alice", Country: "NO"}
	require.NoError(t, NewUserRepository(gdb).Create(context.Background(), u))
	assert.NotEmpty(t, u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicateLogin(t *testing.T) {
	gdb, mock, db := newMockGorm(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: usersLoginKey, Message: "duplicate key value"})

	err := NewUserRepository(gdb).Create(context.Background(), &entity.User{Login: "alice"})
	assert.ErrorIs(t, err, apperror.ErrConflictingLogin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByLoginNotFound(t *testing.T) {
	gdb, mock, db := newMockGorm(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE login = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "login"}))

	_, err := NewUserRepository(gdb).GetByLogin(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByLoginFound(t *testing.T) {
	gdb, mock, db := newMockGorm(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "login", "full_name", "country"}).
		AddRow("7f1c9a52-8f0e-4b8a-9a57-1c2e3f4a5b6c", "alice", "Alice", "NO")
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE login = \$1`).WillReturnRows(rows)

	u, err := NewUserRepository(gdb).GetByLogin(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Login)
	assert.Equal(t, "Alice", u.FullName)
	assert.False(t, u.HasImage())
}

func TestUserRepository_GetByIDRejectsMalformedID(t *testing.T) {
	gdb, mock, db := newMockGorm(t)
	defer db.Close()

	_, err := NewUserRepository(gdb).GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SetImageMissingUser(t *testing.T) {
	gdb, mock, db := newMockGorm(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "image_id"=`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	imageID := "asset-1"
	err := NewUserRepository(gdb).SetImage(context.Background(), "user-1", &imageID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateLoginCollision(t *testing.T) {
	gdb, mock, db := newMockGorm(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: usersLoginKey})

	login := "bob"
	_, err := NewUserRepository(gdb).Update(context.Background(), "user-1", repository.UserPatch{Login: &login})
	assert.ErrorIs(t, err, apperror.ErrConflictingLogin)
}

func TestAssetRepository_DeleteMissing(t *testing.T) {
	gdb, mock, db := newMockGorm(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "assets" WHERE id = $1`)).
		WithArgs("asset-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewAssetRepository(gdb).Delete(context.Background(), "asset-1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepository_Create(t *testing.T) {
	gdb, mock, db := newMockGorm(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "assets"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	a := &entity.Asset{RemoteID: "library/x", Format: "png", ResourceType: "image", URL: "https://cdn/x.png"}
	require.NoError(t, NewAssetRepository(gdb).Create(context.Background(), a))
	assert.NotEmpty(t, a.ID)
}

func TestBookRepository_DeleteFound(t *testing.T) {
	gdb, mock, db := newMockGorm(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "books" WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, NewBookRepository(gdb).Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_UpdateUnknownAuthor(t *testing.T) {
	gdb, mock, db := newMockGorm(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "books" SET`)).
		WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})

	author := "missing"
	_, err := NewBookRepository(gdb).Update(context.Background(), 3, repository.BookPatch{AuthorID: &author})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUserRepository_SetImageAlreadyLinked(t *testing.T) {
	gdb, mock, db := newMockGorm(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_image_id_key"})

	image := "asset-1"
	err := NewUserRepository(gdb).SetImage(context.Background(), "user-1", &image)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.NotErrorIs(t, err, apperror.ErrConflictingLogin)
}

func TestMapError_Internal(t *testing.T) {
	err := mapError(sql.ErrConnDone, "book")
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.Nil(t, mapError(nil, "book"))
}
