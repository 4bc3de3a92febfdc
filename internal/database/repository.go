package database

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm/clause"

	"github.com/oculus/oculus/internal/models"
)

// Repository handles archive operations for closed sessions and errors
type Repository struct {
	db  *DB
	now func() time.Time
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// RecordSession archives a closed session. Sessions already archived (same
// window and start time) are ignored.
func (r *Repository) RecordSession(session models.ClosedSession) error {
	_, err := r.RecordSessions([]models.ClosedSession{session})
	return err
}

// RecordSessions archives sessions in one transaction and returns how many
// were new
func (r *Repository) RecordSessions(sessions []models.ClosedSession) (int64, error) {
	if len(sessions) == 0 {
		return 0, nil
	}

	records := make([]*models.SessionRecord, 0, len(sessions))
	for _, s := range sessions {
		records = append(records, models.NewSessionRecord(s))
	}

	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(records, 200)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to archive sessions")
	}
	return result.RowsAffected, nil
}

// RecordError stores a failed focus change
func (r *Repository) RecordError(windowID int64, kind string, err error) error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}

	errorLog := &models.ErrorLog{
		Timestamp: r.now(),
		WindowID:  windowID,
		Kind:      kind,
		ErrorMsg:  msg,
	}

	if result := r.db.Create(errorLog); result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// CountSessions returns the number of archived sessions
func (r *Repository) CountSessions() (int64, error) {
	var count int64
	if result := r.db.Model(&models.SessionRecord{}).Count(&count); result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to count sessions")
	}
	return count, nil
}

// GetSessionsSince returns archived sessions that ended at or after since,
// oldest first
func (r *Repository) GetSessionsSince(since time.Time) ([]*models.SessionRecord, error) {
	var records []*models.SessionRecord
	result := r.db.Where("end_time >= ?", models.Timestamp(since)).
		Order("end_time ASC").
		Find(&records)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query sessions")
	}
	return records, nil
}

// GetErrors returns the most recent error logs, newest first
func (r *Repository) GetErrors(limit int) ([]*models.ErrorLog, error) {
	var logs []*models.ErrorLog
	result := r.db.Order("timestamp DESC").Limit(limit).Find(&logs)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}
	return logs, nil
}
