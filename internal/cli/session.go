package cli

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/gridfields/internal/grid"
	"github.com/mesh-intelligence/gridfields/internal/logging"
	"github.com/mesh-intelligence/gridfields/internal/metrics"
	"github.com/mesh-intelligence/gridfields/internal/notify"
	"github.com/mesh-intelligence/gridfields/internal/sqlite"
)

// session is the engine wired to the configured store for one command.
type session struct {
	settings *settings
	logger   *zap.Logger
	store    *sqlite.Backend
	changes  *notify.Channel
	engine   *grid.Engine
	metrics  *metrics.Recorder
}

// openSession resolves configuration, attaches the store, and builds the
// engine. The caller must call close.
func openSession(flags *rootFlags) (*session, error) {
	s, err := resolveSettings(flags)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(s.logLevel, s.logFormat)
	if err != nil {
		return nil, usageError("%s", err)
	}
	rec, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		return nil, err
	}

	store := sqlite.NewBackend(sqlite.WithLogger(logger))
	if err := store.Attach(s.store); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}

	changes := notify.NewChannel(s.notifyBuffer, logger, rec)
	engine := grid.NewEngine(grid.Deps{
		Store:    store,
		Notifier: changes,
		Logger:   logger,
		Metrics:  rec,
	})
	return &session{
		settings: s,
		logger:   logger,
		store:    store,
		changes:  changes,
		engine:   engine,
		metrics:  rec,
	}, nil
}

// close drains pending notifications, detaches the store, pushes metrics when
// metrics_push_url is set, and returns the first degraded change as an error.
func (s *session) close() error {
	var degraded error
	for _, change := range s.changes.Drain() {
		s.logger.Debug("field change",
			zap.String("grid_id", change.GridID),
			zap.String("field_id", change.FieldID),
			zap.String("kind", string(change.Kind)),
			zap.Uint64("checksum", change.Checksum),
			zap.Bool("degraded", change.Degraded),
		)
		if change.Degraded && degraded == nil {
			degraded = fmt.Errorf("field %s was changed but could not be saved", change.FieldID)
		}
	}
	detachErr := s.store.Detach()

	var pushErr error
	if url := s.settings.metricsPush; url != "" {
		if err := s.metrics.Push(url, metrics.DefaultJob); err != nil {
			s.logger.Warn("metrics push failed", zap.String("url", url), zap.Error(err))
			pushErr = fmt.Errorf("push metrics: %w", err)
		}
	}
	_ = s.logger.Sync()
	return errors.Join(degraded, detachErr, pushErr)
}

// withSession runs fn with an open session and closes it afterwards.
func withSession(flags *rootFlags, fn func(*session) error) (err error) {
	s, err := openSession(flags)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.close())
	}()
	return fn(s)
}
