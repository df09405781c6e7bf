package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushour/tutoring-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAvailabilityRepositoryInsertBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	windows := []models.AvailabilityWindow{
		{TutorID: "tutor-1", DayOfWeek: 1, StartMinute: 540, EndMinute: 720},
		{TutorID: "tutor-1", DayOfWeek: 3, StartMinute: 840, EndMinute: 900},
	}
	for range windows {
		mock.ExpectExec("INSERT INTO availability_windows").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	require.NoError(t, repo.InsertBatch(context.Background(), nil, windows))
	assert.NotEmpty(t, windows[0].ID, "ids are filled in before insert")
	assert.NotEmpty(t, windows[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryInsertBatchEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	require.NoError(t, repo.InsertBatch(context.Background(), nil, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryFindWindowNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectQuery("SELECT id, tutor_id, day_of_week, start_minute, end_minute, created_at").
		WithArgs("tutor-1", 1, 540, 720).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindWindow(context.Background(), nil, "tutor-1", 1, 540, 720)
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryDeleteWindow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM availability_windows WHERE id = $1")).
		WithArgs("w1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.DeleteWindow(context.Background(), nil, "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryHasWindowCovering(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("tutor-1", 1, 600, 660).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	covered, err := repo.HasWindowCovering(context.Background(), nil, "tutor-1", 1, 600, 660)
	require.NoError(t, err)
	assert.True(t, covered)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("tutor-1", 1, 0, 60).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	covered, err = repo.HasWindowCovering(context.Background(), nil, "tutor-1", 1, 0, 60)
	require.NoError(t, err)
	assert.False(t, covered)
	assert.NoError(t, mock.ExpectationsWereMet())
}
