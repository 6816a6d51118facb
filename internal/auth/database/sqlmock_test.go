package database

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorgomez09/healthflow/internal/auth/models"
)

func newMockDB(t *testing.T) (*SQLiteDB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &SQLiteDB{db: db}, mock
}

func TestSQLiteDB_LoadTokenErrors(t *testing.T) {
	s, mock := newMockDB(t)

	mock.ExpectQuery("SELECT value FROM kv").WithArgs(TokenKey).WillReturnError(sql.ErrNoRows)
	token, err := s.LoadToken()
	require.NoError(t, err)
	assert.Empty(t, token)

	boom := errors.New("disk I/O error")
	mock.ExpectQuery("SELECT value FROM kv").WithArgs(TokenKey).WillReturnError(boom)
	_, err = s.LoadToken()
	assert.ErrorIs(t, err, boom)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteDB_SaveEmptyTokenDeletes(t *testing.T) {
	s, mock := newMockDB(t)

	mock.ExpectExec("DELETE FROM kv").WithArgs(TokenKey).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.SaveToken(""))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteDB_RecordAndCleanupEvents(t *testing.T) {
	s, mock := newMockDB(t)

	mock.ExpectExec("INSERT INTO session_events").
		WithArgs(models.EventLogin, models.StatusFailure, "a@b.c", "bad password", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))
	ev := &models.SessionEvent{Action: models.EventLogin, Status: models.StatusFailure, Email: "a@b.c", Details: "bad password"}
	require.NoError(t, s.RecordEvent(ev))
	assert.Equal(t, int64(7), ev.ID)
	assert.False(t, ev.CreatedAt.IsZero())

	mock.ExpectExec("DELETE FROM session_events").WithArgs(sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 3))
	n, err := s.CleanupEvents(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	require.NoError(t, mock.ExpectationsWereMet())
}
