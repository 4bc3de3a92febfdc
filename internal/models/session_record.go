package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionRecord mirrors a ClosedSession in the archive database
type SessionRecord struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	WindowID  int64          `gorm:"not null;uniqueIndex:idx_window_start" json:"window_id"`
	App       string         `gorm:"not null;index" json:"app"`
	Title     string         `gorm:"not null" json:"title"`
	StartTime float64        `gorm:"not null;uniqueIndex:idx_window_start" json:"start_time"`
	EndTime   float64        `gorm:"not null;index" json:"end_time"`
	Duration  float64        `gorm:"not null;default:0" json:"duration"` // Duration in seconds
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// NewSessionRecord converts a closed session into an archive row
func NewSessionRecord(s ClosedSession) *SessionRecord {
	return &SessionRecord{
		WindowID:  s.WindowID,
		App:       s.App,
		Title:     s.Title,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Duration:  s.Duration,
	}
}
