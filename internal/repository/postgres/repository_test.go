package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/ipr-backend/internal/repository"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestCounterIncrementCreatesMonthAtBase(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCounterRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT current FROM counters").
		WithArgs("applications_0425").
		WillReturnRows(sqlmock.NewRows([]string{"current"}))
	mock.ExpectExec("INSERT INTO counters").
		WithArgs("applications_0425", "0425", int64(101), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	next, err := repo.Increment(context.Background(), "applications_0425", "0425", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(101), next)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterIncrementAdvancesExistingMonth(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCounterRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT current FROM counters").
		WithArgs("applications_0425").
		WillReturnRows(sqlmock.NewRows([]string{"current"}).AddRow(int64(105)))
	mock.ExpectExec("INSERT INTO counters").
		WithArgs("applications_0425", "0425", int64(106), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	next, err := repo.Increment(context.Background(), "applications_0425", "0425", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(106), next)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterIncrementReportsSerializationFailureAsConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCounterRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT current FROM counters").
		WillReturnRows(sqlmock.NewRows([]string{"current"}).AddRow(int64(101)))
	mock.ExpectExec("INSERT INTO counters").
		WillReturnError(&pgconn.PgError{Code: codeSerializationFailure, Message: "could not serialize access"})
	mock.ExpectRollback()

	_, err := repo.Increment(context.Background(), "applications_0425", "0425", 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationAssignNumberWritesOnlyWhenEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "applications" SET .*application_number IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assigned, err := repo.AssignNumber(context.Background(), uuid.New(), "0425-101")
	require.NoError(t, err)
	assert.True(t, assigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationGetMissingIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)

	mock.ExpectQuery(`FROM "applications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationMarkRead(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "notifications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.MarkRead(context.Background(), uuid.New(), time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationCountUnread(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := repo.CountUnread(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
