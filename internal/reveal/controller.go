package reveal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/roleshuffle/internal/assign"
	"github.com/fyrsmithlabs/roleshuffle/internal/logging"
	"github.com/fyrsmithlabs/roleshuffle/internal/roster"
	"github.com/fyrsmithlabs/roleshuffle/internal/telemetry"
)

const instrumentationName = "github.com/fyrsmithlabs/roleshuffle/internal/reveal"

// Controller drives reveal runs. It is safe for concurrent use; at most one
// run is in flight at a time.
type Controller struct {
	engine *assign.Engine
	cfg    Config
	logger *logging.Logger
	tracer trace.Tracer

	runsCounter     metric.Int64Counter
	framesCounter   metric.Int64Counter
	rejectedCounter metric.Int64Counter

	mu      sync.Mutex
	state   State
	current *Run
}

// Option configures a Controller.
type Option func(*options)

type options struct {
	logger *logging.Logger
	tracer trace.Tracer
	meter  metric.Meter
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTracer sets the tracer used for run spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithMeter sets the meter used for run counters.
func WithMeter(m metric.Meter) Option {
	return func(o *options) { o.meter = m }
}

// NewController creates an idle controller.
func NewController(engine *assign.Engine, cfg Config, opts ...Option) (*Controller, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reveal config: %w", err)
	}

	o := options{
		logger: logging.NewNop(),
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Controller{
		engine: engine,
		cfg:    cfg,
		logger: o.logger.Named("reveal"),
		tracer: o.tracer,
		runsCounter: telemetry.Int64Counter(o.meter, "roleshuffle.reveal.runs_total",
			"Reveal runs by outcome"),
		framesCounter: telemetry.Int64Counter(o.meter, "roleshuffle.reveal.frames_total",
			"Frames emitted by reveal runs"),
		rejectedCounter: telemetry.Int64Counter(o.meter, "roleshuffle.reveal.rejected_total",
			"Start requests ignored because a run was in flight"),
		state: StateIdle,
	}, nil
}

// Config returns the frame schedule.
func (c *Controller) Config() Config {
	return c.cfg
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the in-flight run, or nil when idle.
func (c *Controller) Current() *Run {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Start begins a run and returns without waiting for any frame.
//
// Invalid input returns roster.ErrEmptyParticipants or roster.ErrEmptyRoles
// and leaves the controller idle with no frame emitted. While a run is in
// flight the request is ignored: the in-flight run is returned, fn is not
// registered and nothing new is scheduled.
//
// Cancelling ctx or calling Stop ends the run without a final frame.
func (c *Controller) Start(ctx context.Context, participants []roster.Participant, roles []roster.Role, fn FrameFunc) (*Run, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateShuffling {
		c.rejectedCounter.Add(ctx, 1)
		c.logger.Debug(ctx, "reveal already in progress, ignoring start",
			zap.String("run_id", c.current.ID()))
		return c.current, nil
	}

	plan, err := c.engine.Plan(participants, roles)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	run := newRun(uuid.NewString(), cancel)
	runCtx = logging.WithRunID(runCtx, run.ID())

	c.state = StateShuffling
	c.current = run

	c.logger.Info(runCtx, "reveal started",
		zap.Int("participants", len(participants)),
		zap.Int("roles", len(roles)),
		zap.Int("ticks", c.cfg.Ticks),
		zap.Duration("interval", c.cfg.Interval))

	go c.drive(runCtx, run, plan, len(roles), fn)
	return run, nil
}

// Stop cancels the in-flight run, if any, and reports whether one existed.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	run := c.current
	c.mu.Unlock()

	if run == nil {
		return false
	}
	run.cancel()
	return true
}

// drive runs the frame loop and then publishes its outcome.
func (c *Controller) drive(ctx context.Context, run *Run, plan *assign.Plan, roleCount int, fn FrameFunc) {
	result, err := c.emit(ctx, run, plan, roleCount, fn)
	c.finish(run, result, err)
}

// emit sends frames on a ticker. The ticker is stopped on every exit path.
func (c *Controller) emit(ctx context.Context, run *Run, plan *assign.Plan, roleCount int, fn FrameFunc) ([]roster.Participant, error) {
	ctx, span := c.tracer.Start(ctx, "reveal.run", trace.WithAttributes(
		attribute.String("run_id", run.ID()),
		attribute.Int("participants", plan.Len()),
		attribute.Int("roles", roleCount),
		attribute.Int("ticks", c.cfg.Ticks),
	))
	defer span.End()

	started := time.Now()
	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	canceled := func(frames int) error {
		err := fmt.Errorf("%w: %w", ErrCanceled, context.Cause(ctx))
		span.RecordError(err)
		span.SetStatus(codes.Error, "canceled")
		c.runsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "canceled")))
		c.logger.Info(ctx, "reveal canceled", zap.Int("frames", frames))
		return err
	}

	for tick := 1; tick <= c.cfg.Ticks; tick++ {
		select {
		case <-ctx.Done():
			return nil, canceled(tick - 1)
		case <-ticker.C:
		}
		// A tick buffered during a slow callback races ctx.Done in the
		// select; cancellation always wins.
		if ctx.Err() != nil {
			return nil, canceled(tick - 1)
		}

		frame := Frame{RunID: run.ID(), Tick: tick, Total: c.cfg.Ticks}
		if tick == c.cfg.Ticks {
			frame.Final = true
			frame.Participants = plan.Final()
		} else {
			frame.Participants = plan.Decoy(c.engine)
		}

		c.framesCounter.Add(ctx, 1)
		c.logger.Trace(ctx, "reveal frame", zap.Int("tick", tick), zap.Bool("final", frame.Final))
		if fn != nil {
			fn(frame)
		}
	}

	span.SetStatus(codes.Ok, "")
	c.runsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "completed")))
	c.logger.Info(ctx, "roles assigned", zap.Duration("elapsed", time.Since(started)))
	return plan.Final(), nil
}

// finish returns the controller to idle, then publishes the outcome.
func (c *Controller) finish(run *Run, result []roster.Participant, err error) {
	c.mu.Lock()
	if c.current == run {
		c.state = StateIdle
		c.current = nil
	}
	c.mu.Unlock()

	run.finish(result, err)
}
