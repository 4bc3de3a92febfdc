package models

import (
	"fmt"
	"math"
	"time"
)

// durationTolerance absorbs float rounding when checking stored durations
const durationTolerance = 1e-6

// Session is an open interval of focus on one window
type Session struct {
	WindowID  int64   `json:"window_id"`
	App       string  `json:"app"`
	Title     string  `json:"title"`
	StartTime float64 `json:"start_time"` // Seconds since epoch
}

// ClosedSession is a Session with its end recorded. Duration is computed
// once at close and never recomputed.
type ClosedSession struct {
	Session
	EndTime  float64 `json:"end_time"`
	Duration float64 `json:"duration"`
}

// SessionsData is the persisted session document
type SessionsData struct {
	CurrentSession *Session        `json:"current_session"`
	Sessions       []ClosedSession `json:"sessions"`
}

// NewSessionsData returns the empty state used when no document exists yet
func NewSessionsData() *SessionsData {
	return &SessionsData{Sessions: []ClosedSession{}}
}

// Timestamp converts t into fractional seconds since epoch
func Timestamp(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// CloseCurrent moves the open session, if any, into Sessions with end time
// now and returns the closed entry. A now earlier than the start (the wall
// clock stepped backwards) is clamped so the duration is never negative.
func (d *SessionsData) CloseCurrent(now float64) *ClosedSession {
	if d.CurrentSession == nil {
		return nil
	}

	end := now
	if end < d.CurrentSession.StartTime {
		end = d.CurrentSession.StartTime
	}

	closed := ClosedSession{
		Session:  *d.CurrentSession,
		EndTime:  end,
		Duration: end - d.CurrentSession.StartTime,
	}
	d.Sessions = append(d.Sessions, closed)
	d.CurrentSession = nil

	return &closed
}

// Open starts a new current session. Any session still open must be closed
// first.
func (d *SessionsData) Open(windowID int64, app, title string, now float64) (*Session, error) {
	if d.CurrentSession != nil {
		return nil, fmt.Errorf("session for window %d is still open", d.CurrentSession.WindowID)
	}

	d.CurrentSession = &Session{
		WindowID:  windowID,
		App:       app,
		Title:     title,
		StartTime: now,
	}
	return d.CurrentSession, nil
}

// Validate checks the closed-session invariants of the document
func (d *SessionsData) Validate() error {
	for i, s := range d.Sessions {
		if s.EndTime < s.StartTime {
			return fmt.Errorf("session %d ends before it starts (%v < %v)", i, s.EndTime, s.StartTime)
		}
		if math.Abs(s.Duration-(s.EndTime-s.StartTime)) > durationTolerance {
			return fmt.Errorf("session %d duration %v does not match end - start (%v)", i, s.Duration, s.EndTime-s.StartTime)
		}
	}
	return nil
}
