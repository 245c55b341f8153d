// Package app assembles roleshuffle's services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/roleshuffle/internal/assign"
	"github.com/fyrsmithlabs/roleshuffle/internal/blobstore"
	"github.com/fyrsmithlabs/roleshuffle/internal/blobstore/afsblob"
	"github.com/fyrsmithlabs/roleshuffle/internal/blobstore/boltblob"
	"github.com/fyrsmithlabs/roleshuffle/internal/blobstore/natsblob"
	"github.com/fyrsmithlabs/roleshuffle/internal/blobstore/sqliteblob"
	"github.com/fyrsmithlabs/roleshuffle/internal/config"
	"github.com/fyrsmithlabs/roleshuffle/internal/configstore"
	"github.com/fyrsmithlabs/roleshuffle/internal/logging"
	"github.com/fyrsmithlabs/roleshuffle/internal/reveal"
	"github.com/fyrsmithlabs/roleshuffle/internal/roster"
	"github.com/fyrsmithlabs/roleshuffle/internal/telemetry"
)

const instrumentationName = "github.com/fyrsmithlabs/roleshuffle"

// App holds the wired services. Team is the live roster shared by the
// terminal UI and the HTTP API.
type App struct {
	Config    *config.Config
	Version   string
	Logger    *logging.Logger
	Telemetry *telemetry.Telemetry
	Blobs     blobstore.Store
	Store     configstore.Store
	Engine    *assign.Engine
	Reveal    *reveal.Controller
	Team      *roster.Team

	ownsLogger bool
}

// Option customises New.
type Option func(*options)

type options struct {
	logger    *logging.Logger
	telemetry *telemetry.Telemetry
	blobs     blobstore.Store
	engine    *assign.Engine
}

// WithLogger uses l instead of building a logger from cfg.Logging.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTelemetry uses t instead of building providers from cfg.Observability.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(o *options) { o.telemetry = t }
}

// WithBlobStore uses s instead of opening cfg.Store.Backend.
func WithBlobStore(s blobstore.Store) Option {
	return func(o *options) { o.blobs = s }
}

// WithEngine overrides the assignment engine.
func WithEngine(e *assign.Engine) Option {
	return func(o *options) { o.engine = e }
}

// New builds every service. On failure anything already opened is closed.
func New(ctx context.Context, cfg *config.Config, version string, opts ...Option) (_ *App, err error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Version: version}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	a.Telemetry = o.telemetry
	if a.Telemetry == nil {
		a.Telemetry, err = telemetry.New(ctx, telemetry.FromAppConfig(cfg.Observability, version))
		if err != nil {
			return nil, fmt.Errorf("init telemetry: %w", err)
		}
	}

	a.Logger = o.logger
	if a.Logger == nil {
		logCfg, err := logging.FromAppConfig(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("init logging: %w", err)
		}
		logCfg.Output.OTEL = cfg.Observability.EnableTelemetry
		a.Logger, err = logging.NewLogger(logCfg, global.GetLoggerProvider())
		if err != nil {
			return nil, fmt.Errorf("init logging: %w", err)
		}
		a.ownsLogger = true
	}
	if degraded, reason := a.Telemetry.Degraded(); degraded {
		a.Logger.Warn(ctx, "telemetry degraded, continuing without export", zap.Error(reason))
	}

	a.Blobs = o.blobs
	if a.Blobs == nil {
		a.Blobs, err = OpenBlobStore(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
	}

	a.Store, err = configstore.Open(ctx, a.Blobs,
		configstore.WithLogger(a.Logger),
		configstore.WithTracer(a.Telemetry.Tracer(instrumentationName)),
		configstore.WithMeter(a.Telemetry.Meter(instrumentationName)),
	)
	if err != nil {
		return nil, fmt.Errorf("open configuration store: %w", err)
	}

	a.Engine = o.engine
	if a.Engine == nil {
		a.Engine = assign.New(assign.WithMeter(a.Telemetry.Meter(instrumentationName)))
	}

	a.Reveal, err = reveal.NewController(a.Engine, reveal.Config{
		Ticks:    cfg.Reveal.Ticks,
		Interval: cfg.Reveal.Interval.Duration(),
	},
		reveal.WithLogger(a.Logger),
		reveal.WithTracer(a.Telemetry.Tracer(instrumentationName)),
		reveal.WithMeter(a.Telemetry.Meter(instrumentationName)),
	)
	if err != nil {
		return nil, err
	}

	a.Team = roster.NewTeam()

	a.Logger.Debug(ctx, "application ready",
		zap.String("version", version),
		zap.String("store_backend", cfg.Store.Backend))
	return a, nil
}

// OpenBlobStore opens the backend named by cfg.Backend, wrapped with
// Prometheus instrumentation.
func OpenBlobStore(ctx context.Context, cfg config.StoreConfig) (blobstore.Store, error) {
	var (
		store blobstore.Store
		err   error
	)
	switch cfg.Backend {
	case config.BackendFile:
		store, err = afsblob.Open(ctx, cfg.Path)
	case config.BackendMemory:
		store, err = afsblob.Open(ctx, afsblob.MemoryScheme+"roleshuffle")
	case config.BackendBolt:
		store, err = boltblob.Open(cfg.Path)
	case config.BackendSQLite:
		store, err = sqliteblob.Open(ctx, cfg.Path)
	case config.BackendNATS:
		store, err = natsblob.Connect(ctx, cfg.URL, cfg.Bucket)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}
	return blobstore.Instrument(store, cfg.Backend), nil
}

// Close stops the reveal controller and releases every resource in reverse
// order of creation. It is safe to call on a partially built App.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if a.Reveal != nil {
		a.Reveal.Stop()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close configuration store: %w", err))
		}
	}
	if a.Blobs != nil {
		if err := a.Blobs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close blob store: %w", err))
		}
	}
	if a.Telemetry != nil {
		if err := a.Telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown telemetry: %w", err))
		}
	}
	if a.Logger != nil && a.ownsLogger {
		_ = a.Logger.Sync()
	}
	return errors.Join(errs...)
}
