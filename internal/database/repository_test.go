package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oculus/oculus/internal/models"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "archive", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(db)
}

func closedSession(id int64, start, end float64) models.ClosedSession {
	return models.ClosedSession{
		Session:  models.Session{WindowID: id, App: "Editor", Title: "main.go", StartTime: start},
		EndTime:  end,
		Duration: end - start,
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "oculus.db")

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
	assert.True(t, db.Migrator().HasTable(&models.SessionRecord{}))
	assert.True(t, db.Migrator().HasTable(&models.ErrorLog{}))
}

func TestRecordSession(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.RecordSession(closedSession(42, 1000, 1050)))

	records, err := repo.GetSessionsSince(time.Unix(0, 0))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(42), records[0].WindowID)
	assert.Equal(t, "Editor", records[0].App)
	assert.Equal(t, 1000.0, records[0].StartTime)
	assert.Equal(t, 1050.0, records[0].EndTime)
	assert.Equal(t, 50.0, records[0].Duration)
}

func TestRecordSessionsSkipsDuplicates(t *testing.T) {
	repo := newTestRepository(t)

	sessions := []models.ClosedSession{
		closedSession(42, 1000, 1050),
		closedSession(7, 1050, 1200),
	}

	added, err := repo.RecordSessions(sessions)
	require.NoError(t, err)
	assert.Equal(t, int64(2), added)

	sessions = append(sessions, closedSession(8, 1200, 1300))
	added, err = repo.RecordSessions(sessions)
	require.NoError(t, err)
	assert.Equal(t, int64(1), added)

	count, err := repo.CountSessions()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	added, err = repo.RecordSessions(nil)
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestGetSessionsSince(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.RecordSessions([]models.ClosedSession{
		closedSession(42, 1000, 1050),
		closedSession(7, 1050, 1200),
	})
	require.NoError(t, err)

	records, err := repo.GetSessionsSince(time.Unix(1100, 0))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(7), records[0].WindowID)
}

func TestRecordError(t *testing.T) {
	repo := newTestRepository(t)
	repo.now = func() time.Time { return time.Unix(5000, 0) }

	require.NoError(t, repo.RecordError(99, "not_found", errors.New("window 99 not found")))
	require.NoError(t, repo.RecordError(0, "other", nil))

	logs, err := repo.GetErrors(10)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	var found bool
	for _, l := range logs {
		if l.WindowID == 99 {
			found = true
			assert.Equal(t, "not_found", l.Kind)
			assert.Equal(t, "window 99 not found", l.ErrorMsg)
			assert.True(t, l.Timestamp.Equal(time.Unix(5000, 0)))
		}
	}
	assert.True(t, found)
}
