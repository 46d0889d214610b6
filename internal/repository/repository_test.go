package repository

import (
	"testing"
	"time"

	"imdb-catalog/internal/config"
	"imdb-catalog/internal/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var titleRowColumns = []string{
	"imdb_id", "title_type", "primary_title", "original_title",
	"is_adult", "start_year", "end_year", "runtime", "genres",
}

// setupTestDB returns a Database backed by sqlmock and the list of every
// statement it received.
func setupTestDB(t *testing.T) (*database.Database, sqlmock.Sqlmock, *[]string) {
	statements := &[]string{}
	matcher := sqlmock.QueryMatcherFunc(func(expectedSQL, actualSQL string) error {
		*statements = append(*statements, actualSQL)
		return sqlmock.QueryMatcherRegexp.Match(expectedSQL, actualSQL)
	})

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(matcher))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	return database.New(db, config.DatabaseConfig{QueryTimeout: 2 * time.Second}), mock, statements
}
