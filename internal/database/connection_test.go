package database

import (
	"errors"
	"io"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestCreateIndexesContinuesPastFailures(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	for i, stmt := range indexes {
		exp := mock.ExpectExec(regexp.QuoteMeta(stmt))
		if i == 1 {
			exp.WillReturnError(errors.New("permission denied"))
			continue
		}
		exp.WillReturnResult(sqlmock.NewResult(0, 0))
	}

	assert.Equal(t, 1, createIndexes(db, quietLogger()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, gormLogLevel("silent"))
	assert.Equal(t, logger.Warn, gormLogLevel("warn"))
	assert.Equal(t, logger.Info, gormLogLevel("verbose"))
}
