package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/oculus/oculus/internal/config"
	"github.com/oculus/oculus/internal/models"
	"github.com/oculus/oculus/internal/store"
	"github.com/oculus/oculus/pkg/window"
)

// NoWindow means focus left every tracked window
const NoWindow int64 = -1

// SessionStore is the read-modify-write capability the tracker needs
type SessionStore interface {
	Update(ctx context.Context, fn func(data *models.SessionsData) error) error
}

// Archive receives closed sessions and tracker failures. It is best effort:
// archive errors are logged and never fail a focus change.
type Archive interface {
	RecordSession(session models.ClosedSession) error
	RecordError(windowID int64, kind string, err error) error
}

// Result describes what a focus change did
type Result struct {
	Closed   *models.ClosedSession `json:"closed"`
	Opened   *models.Session       `json:"opened"`
	Extended bool                  `json:"extended,omitempty"`
}

type Service struct {
	store         SessionStore
	directory     window.Directory
	archive       Archive
	sameWindow    string
	lookupTimeout time.Duration
	now           func() time.Time
	logger        zerolog.Logger
}

// NewService creates a tracker. archive may be nil.
func NewService(cfg *config.Config, st SessionStore, dir window.Directory, archive Archive, logger zerolog.Logger) *Service {
	return &Service{
		store:         st,
		directory:     dir,
		archive:       archive,
		sameWindow:    cfg.Tracker.SameWindow,
		lookupTimeout: cfg.Directory.Timeout,
		now:           time.Now,
		logger:        logger,
	}
}

// Focus records that windowID now holds focus, or that no window does when
// windowID is NoWindow. The open session is closed first; the close is
// persisted even when the new window cannot be found, in which case a
// *window.WindowNotFoundError is returned alongside the result.
func (s *Service) Focus(ctx context.Context, windowID int64) (*Result, error) {
	if windowID < 0 && windowID != NoWindow {
		return nil, fmt.Errorf("invalid window id %d", windowID)
	}

	var target *window.Window
	var notFound *window.WindowNotFoundError

	if windowID != NoWindow {
		w, err := s.lookup(ctx, windowID)
		switch {
		case err == nil:
			target = w
		case errors.As(err, &notFound):
			s.logger.Info().Int64("window_id", windowID).Msg("Window not found, closing current session only")
		default:
			s.recordError(windowID, err)
			return nil, err
		}
	}

	var result *Result
	err := s.store.Update(ctx, func(data *models.SessionsData) error {
		var err error
		result, err = s.transition(data, target)
		return err
	})
	if err != nil {
		s.recordError(windowID, err)
		return nil, err
	}

	s.report(result)

	if notFound != nil {
		s.recordError(windowID, notFound)
		return result, notFound
	}
	return result, nil
}

// lookup resolves the window within the directory timeout. Any failure other
// than "not found" is reported as the directory being unavailable.
func (s *Service) lookup(ctx context.Context, windowID int64) (*window.Window, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	w, err := s.directory.Lookup(lookupCtx, windowID)
	if err == nil {
		return w, nil
	}

	var notFound *window.WindowNotFoundError
	var unavailable *window.DirectoryUnavailableError
	if errors.As(err, &notFound) || errors.As(err, &unavailable) {
		return nil, err
	}
	return nil, window.Unavailable(s.directory.Backend(), err)
}

// transition applies one focus change to data. The timestamp is taken here,
// while the store lock is held, so sessions are ordered by lock acquisition.
func (s *Service) transition(data *models.SessionsData, target *window.Window) (*Result, error) {
	now := models.Timestamp(s.now())
	result := &Result{}

	current := data.CurrentSession
	if target != nil && current != nil && current.WindowID == target.ID && s.sameWindow == config.SameWindowExtend {
		result.Extended = true
		return result, nil
	}

	result.Closed = data.CloseCurrent(now)

	if target == nil {
		return result, nil
	}

	opened, err := data.Open(target.ID, target.App, target.Title, now)
	if err != nil {
		return nil, err
	}
	session := *opened
	result.Opened = &session

	return result, nil
}

func (s *Service) report(result *Result) {
	if result.Extended {
		s.logger.Debug().Msg("Same window refocused, session extended")
		return
	}

	if c := result.Closed; c != nil {
		s.logger.Info().
			Int64("window_id", c.WindowID).
			Str("app", c.App).
			Float64("duration", c.Duration).
			Msg("Session closed")

		if s.archive != nil {
			if err := s.archive.RecordSession(*c); err != nil {
				s.logger.Warn().Err(err).Int64("window_id", c.WindowID).Msg("Failed to archive closed session")
			}
		}
	}

	if o := result.Opened; o != nil {
		s.logger.Info().
			Int64("window_id", o.WindowID).
			Str("app", o.App).
			Str("title", o.Title).
			Msg("Session opened")
	}
}

func (s *Service) recordError(windowID int64, err error) {
	kind := ErrorKind(err)
	s.logger.Debug().Err(err).Int64("window_id", windowID).Str("kind", kind).Msg("Focus change failed")

	if s.archive == nil {
		return
	}
	if dbErr := s.archive.RecordError(windowID, kind, err); dbErr != nil {
		s.logger.Warn().Err(dbErr).Msg("Failed to store error in archive")
	}
}

// Error kinds reported by ErrorKind
const (
	KindNotFound    = "not_found"
	KindUnavailable = "directory_unavailable"
	KindLockTimeout = "lock_timeout"
	KindCorrupt     = "corrupt_state"
	KindOther       = "other"
)

// ErrorKind classifies an error returned by Focus
func ErrorKind(err error) string {
	var notFound *window.WindowNotFoundError
	var unavailable *window.DirectoryUnavailableError
	var lockTimeout *store.LockTimeoutError
	var corrupt *store.CorruptStateError

	switch {
	case errors.As(err, &notFound):
		return KindNotFound
	case errors.As(err, &unavailable):
		return KindUnavailable
	case errors.As(err, &lockTimeout):
		return KindLockTimeout
	case errors.As(err, &corrupt):
		return KindCorrupt
	default:
		return KindOther
	}
}
