package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nhle/teamspace/internal/chat"
	"github.com/nhle/teamspace/internal/config"
	"github.com/nhle/teamspace/internal/session"
	"github.com/nhle/teamspace/internal/store"
	"github.com/nhle/teamspace/internal/ui"
	"github.com/nhle/teamspace/internal/workspace"
)

// app bundles the services one command invocation works against.
type app struct {
	cfg    *config.AppConfig
	logger *slog.Logger
	now    func() time.Time
	layout ui.Layout

	registry *prometheus.Registry
	backend  store.Backend
	writer   *store.Writer
	sessions store.Backend

	ws      *workspace.Workspace
	chat    *chat.Service
	session *session.Provider
}

type appOptions struct {
	ephemeral bool
	width     int
	logLevel  string
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// openApp opens the configured backends and loads every collection.
func openApp(ctx context.Context, cfg *config.AppConfig, opts appOptions) (*app, error) {
	level := cfg.Log.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger := newLogger(level)
	slog.SetDefault(logger)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		layout:   ui.NewLayout(opts.width, 0),
		registry: prometheus.NewRegistry(),
	}

	metrics := store.NewMetrics(a.registry)

	raw, err := openBackend(cfg, opts.ephemeral)
	if err != nil {
		return nil, err
	}
	backend := store.Instrument(raw, metrics)

	if cfg.Storage.Async {
		a.writer = store.NewWriter(backend,
			store.WithWriterLogger(logger),
			store.WithWriterMetrics(metrics))
		a.writer.Start()
		backend = a.writer
	}
	a.backend = backend

	a.sessions = backend
	if !opts.ephemeral && cfg.Session.Backend == config.SessionBackendKeyring {
		ring, err := store.OpenKeyringStore()
		if err != nil {
			logger.Warn("keyring unavailable, keeping the session in storage", "error", err)
		} else {
			a.sessions = ring
		}
	}

	a.ws = workspace.New(backend, workspace.WithLogger(logger))
	if err := a.ws.Load(ctx); err != nil {
		_ = a.close(ctx)
		return nil, fmt.Errorf("loading workspace: %w", err)
	}

	a.chat = chat.New(backend, chat.WithLogger(logger))
	if err := a.chat.Load(ctx); err != nil {
		_ = a.close(ctx)
		return nil, fmt.Errorf("loading chat: %w", err)
	}

	a.session, err = session.New(a.sessions, cfg.Session.Mode, session.WithLogger(logger))
	if err != nil {
		_ = a.close(ctx)
		return nil, err
	}
	if _, _, err := a.session.Restore(ctx); err != nil {
		logger.Warn("could not restore session", "error", err)
	}

	return a, nil
}

func openBackend(cfg *config.AppConfig, ephemeral bool) (store.Backend, error) {
	if ephemeral {
		return store.NewMemoryStore(), nil
	}

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		s, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return s, nil
	case config.BackendRedis:
		s, err := store.NewRedisStore(cfg.Storage.RedisURL, cfg.Storage.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("opening redis store: %w", err)
		}
		return s, nil
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// close flushes queued writes and releases the backends.
func (a *app) close(ctx context.Context) error {
	a.logWrites()

	var errs []error
	if a.sessions != nil && a.sessions != a.backend {
		errs = append(errs, a.sessions.Close())
	}
	if a.writer != nil {
		errs = append(errs, a.writer.Stop(ctx))
	}
	// The writer, when present, is the backend and closes what it wraps.
	if a.backend != nil {
		errs = append(errs, a.backend.Close())
	}
	return errors.Join(errs...)
}

// logWrites reports the collected storage metrics at debug level.
func (a *app) logWrites() {
	families, err := a.registry.Gather()
	if err != nil {
		a.logger.Debug("gathering metrics", "error", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			attrs := []any{"metric", mf.GetName()}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				attrs = append(attrs, "value", m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				attrs = append(attrs, "value", m.GetGauge().GetValue())
			case m.GetHistogram() != nil:
				attrs = append(attrs, "count", m.GetHistogram().GetSampleCount())
			}
			a.logger.Debug("storage", attrs...)
		}
	}
}

// saveWarning turns a failed write into a warning. The change itself was
// applied and stays visible for the rest of the session.
func (a *app) saveWarning(err error) error {
	var se *store.SaveError
	if errors.As(err, &se) {
		a.logger.Warn("change applied but not saved", "key", se.Key, "error", se.Err)
		return nil
	}
	return err
}
