package postgres

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/oksasatya/go-library-api/pkg/apperror"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	// usersLoginKey is the unique constraint on users.login (db/migrations/000001).
	usersLoginKey = "users_login_key"
)

// NewGorm opens a GORM handle that shares the pgx pool.
func NewGorm(pool *pgxpool.Pool, logger *logrus.Logger) (*gorm.DB, error) {
	return OpenGorm(stdlib.OpenDBFromPool(pool), logger)
}

// OpenGorm opens a GORM handle on an existing connection pool.
func OpenGorm(conn gorm.ConnPool, logger *logrus.Logger) (*gorm.DB, error) {
	cfg := &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	}
	if logger != nil {
		cfg.Logger = gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}
	return gorm.Open(pgdriver.New(pgdriver.Config{Conn: conn}), cfg)
}

// mapError translates driver and GORM errors into apperror kinds.
// what names the entity for not-found messages.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Wrap(apperror.KindNotFound, what+" not found", err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == usersLoginKey:
			return apperror.Wrap(apperror.KindConflictingLogin, "login already taken", err)
		case pgErr.Code == pgForeignKeyViolation:
			return apperror.Wrap(apperror.KindNotFound, "referenced record not found", err)
		}
	}
	return apperror.Wrap(apperror.KindInternal, "database error", err)
}
