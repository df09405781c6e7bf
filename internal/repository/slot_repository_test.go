package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushour/tutoring-api/internal/models"
)

func TestSlotRepositoryInsertBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	slots := []models.Slot{
		{WindowID: "w1", TutorID: "tutor-1", DayOfWeek: 1, StartMinute: 540, DurationMinutes: 60},
		{WindowID: "w1", TutorID: "tutor-1", DayOfWeek: 1, StartMinute: 600, DurationMinutes: 60},
	}
	for range slots {
		mock.ExpectExec("INSERT INTO slots").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	require.NoError(t, repo.InsertBatch(context.Background(), nil, slots))
	assert.NotEmpty(t, slots[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryListByTutor(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "window_id", "tutor_id", "day_of_week", "start_minute", "duration_minutes", "created_at"}).
		AddRow("s1", "w1", "tutor-1", 1, 540, 60, now).
		AddRow("s2", "w1", "tutor-1", 1, 600, 60, now)
	mock.ExpectQuery("SELECT (.+) FROM slots WHERE tutor_id").
		WithArgs("tutor-1").
		WillReturnRows(rows)

	slots, err := repo.ListByTutor(context.Background(), "tutor-1")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, 600, slots[1].StartMinute)
	assert.NoError(t, mock.ExpectationsWereMet())
}
