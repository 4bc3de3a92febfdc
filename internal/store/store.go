package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/oculus/oculus/internal/config"
	"github.com/oculus/oculus/internal/models"
)

// Store owns the on-disk session document. Every operation runs under an
// exclusive cross-process lock, and between processes the file is the only
// source of truth: nothing is cached in memory across calls.
type Store struct {
	dataPath    string
	lockPath    string
	lockTimeout time.Duration
	lockRetry   time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// Options configures a Store
type Options struct {
	DataPath    string
	LockPath    string
	LockTimeout time.Duration
	LockRetry   time.Duration
	Logger      zerolog.Logger
}

// New creates a store for the given data and lock paths
func New(opts Options) *Store {
	return &Store{
		dataPath:    opts.DataPath,
		lockPath:    opts.LockPath,
		lockTimeout: opts.LockTimeout,
		lockRetry:   opts.LockRetry,
		logger:      opts.Logger,
		now:         time.Now,
	}
}

// NewFromConfig creates a store using the configured store section
func NewFromConfig(cfg *config.Config, logger zerolog.Logger) *Store {
	return New(Options{
		DataPath:    cfg.DataPath(),
		LockPath:    cfg.LockPath(),
		LockTimeout: cfg.Store.LockTimeout,
		LockRetry:   cfg.Store.LockRetry,
		Logger:      logger,
	})
}

// DataPath returns the path of the session document
func (s *Store) DataPath() string {
	return s.dataPath
}

// Load returns the current session state. A missing document yields the
// empty state.
func (s *Store) Load(ctx context.Context) (*models.SessionsData, error) {
	var data *models.SessionsData
	err := s.withLock(ctx, func() error {
		var err error
		data, err = s.read()
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save replaces the session document with data
func (s *Store) Save(ctx context.Context, data *models.SessionsData) error {
	return s.withLock(ctx, func() error {
		return s.write(data)
	})
}

// Update loads the document, applies fn and saves the result, all within a
// single lock acquisition. Nothing is written if fn fails or leaves the
// state unchanged.
func (s *Store) Update(ctx context.Context, fn func(data *models.SessionsData) error) error {
	return s.withLock(ctx, func() error {
		data, err := s.read()
		if err != nil {
			return err
		}

		before, err := encode(data)
		if err != nil {
			return err
		}

		if err := fn(data); err != nil {
			return err
		}

		after, err := encode(data)
		if err != nil {
			return err
		}

		if bytes.Equal(before, after) {
			s.logger.Debug().Str("path", s.dataPath).Msg("Session state unchanged, skipping save")
			return nil
		}

		return s.writeEncoded(after)
	})
}

// Repair moves a corrupt session document aside so tracking can restart
// from an empty state. It returns the new location of the corrupt file, or
// "" if the document was missing or valid.
func (s *Store) Repair(ctx context.Context) (string, error) {
	var moved string
	err := s.withLock(ctx, func() error {
		_, err := s.read()
		if err == nil {
			return nil
		}

		var corrupt *CorruptStateError
		if !errors.As(err, &corrupt) {
			return err
		}

		moved = fmt.Sprintf("%s.corrupt-%d", s.dataPath, s.now().Unix())
		if err := os.Rename(s.dataPath, moved); err != nil {
			return errors.Wrap(err, "failed to move corrupt session state aside")
		}

		s.logger.Info().Str("path", s.dataPath).Str("moved_to", moved).Err(corrupt.Err).
			Msg("Corrupt session state moved aside")
		return nil
	})
	if err != nil {
		return "", err
	}
	return moved, nil
}

// read decodes the document. Callers must hold the lock.
func (s *Store) read() (*models.SessionsData, error) {
	raw, err := os.ReadFile(s.dataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.NewSessionsData(), nil
		}
		return nil, errors.Wrap(err, "failed to read session state")
	}

	var data models.SessionsData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &CorruptStateError{Path: s.dataPath, Err: err}
	}
	if err := data.Validate(); err != nil {
		return nil, &CorruptStateError{Path: s.dataPath, Err: err}
	}
	if data.Sessions == nil {
		data.Sessions = []models.ClosedSession{}
	}

	return &data, nil
}

// write serializes the full document. Callers must hold the lock.
func (s *Store) write(data *models.SessionsData) error {
	encoded, err := encode(data)
	if err != nil {
		return err
	}
	return s.writeEncoded(encoded)
}

// writeEncoded replaces the document atomically: readers see either the
// previous document or the new one, never a partial write.
func (s *Store) writeEncoded(encoded []byte) error {
	if err := renameio.WriteFile(s.dataPath, encoded, 0644); err != nil {
		return errors.Wrap(err, "failed to write session state")
	}
	s.logger.Debug().Str("path", s.dataPath).Int("bytes", len(encoded)).Msg("Session state saved")
	return nil
}

func encode(data *models.SessionsData) ([]byte, error) {
	normalized := *data
	if normalized.Sessions == nil {
		normalized.Sessions = []models.ClosedSession{}
	}

	encoded, err := json.MarshalIndent(&normalized, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode session state")
	}
	return append(encoded, '\n'), nil
}
