package models

import (
	"time"

	"gorm.io/gorm"
)

// ErrorLog records a failed tracker invocation in the archive database
type ErrorLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	WindowID  int64          `gorm:"not null;default:0" json:"window_id"`
	Kind      string         `gorm:"not null;index" json:"kind"` // "not_found", "lock_timeout", ...
	ErrorMsg  string         `gorm:"not null" json:"error_msg"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
