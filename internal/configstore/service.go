package configstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/roleshuffle/internal/blobstore"
	"github.com/fyrsmithlabs/roleshuffle/internal/logging"
	"github.com/fyrsmithlabs/roleshuffle/internal/roster"
	"github.com/fyrsmithlabs/roleshuffle/internal/telemetry"
)

const instrumentationName = "github.com/fyrsmithlabs/roleshuffle/internal/configstore"

// Option configures the store.
type Option func(*service)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *service) { s.logger = l }
}

// WithTracer sets the tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *service) { s.tracer = t }
}

// WithMeter sets the meter used for mutation counters.
func WithMeter(m metric.Meter) Option {
	return func(s *service) { s.meter = m }
}

// WithClock overrides the save timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

type service struct {
	backend blobstore.Store
	logger  *logging.Logger
	tracer  trace.Tracer
	meter   metric.Meter
	now     func() time.Time

	mutations metric.Int64Counter

	mu     sync.RWMutex
	items  []*Configuration
	closed bool
}

// Open reads the saved list from backend. A missing blob is an empty list.
func Open(ctx context.Context, backend blobstore.Store, opts ...Option) (Store, error) {
	if backend == nil {
		return nil, errors.New("blob store is required")
	}

	s := &service{
		backend: backend,
		logger:  logging.NewNop(),
		tracer:  otel.Tracer(instrumentationName),
		meter:   otel.Meter(instrumentationName),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("configstore")
	s.mutations = telemetry.Int64Counter(s.meter, "roleshuffle.configstore.mutations_total",
		"Configuration store mutations by operation and outcome")

	ctx, span := s.tracer.Start(ctx, "configstore.Open")
	defer span.End()

	if err := s.load(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("configurations", len(s.items)))
	s.logger.Debug(ctx, "configurations loaded", zap.Int("count", len(s.items)))
	return s, nil
}

func (s *service) load(ctx context.Context) error {
	data, err := s.backend.Get(ctx, BlobKey)
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read saved configurations: %w", err)
	}

	var items []*Configuration
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupted, err)
	}

	loaded := make([]*Configuration, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if t, err := time.ParseInLocation(DateLayout, item.Date, time.Local); err == nil {
			item.SavedAt = t
		}
		loaded = append(loaded, item)
	}
	s.items = loaded
	return nil
}

// flush writes the current list. Callers hold s.mu.
func (s *service) flush(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []*Configuration{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := s.backend.Put(ctx, BlobKey, data); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s *service) Save(ctx context.Context, name string, participants []roster.Participant, roles []roster.Role) (*Configuration, error) {
	ctx, span := s.tracer.Start(ctx, "configstore.Save", trace.WithAttributes(
		attribute.Int("participants", len(participants)),
		attribute.Int("roles", len(roles)),
	))
	defer span.End()

	cfg, err := s.save(ctx, name, participants, roles)
	s.record(ctx, span, "save", err)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("configuration_id", cfg.ID))
	s.logger.Info(ctx, "team saved", zap.String("id", cfg.ID), zap.String("name", cfg.Name))
	return cfg, nil
}

func (s *service) save(ctx context.Context, name string, participants []roster.Participant, roles []roster.Role) (*Configuration, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &roster.ValidationError{Reason: roster.ReasonEmptyName, Entity: "configuration"}
	}
	if len(participants) == 0 || len(roles) == 0 {
		return nil, &roster.ValidationError{Reason: roster.ReasonEmptyConfiguration, Entity: "configuration"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	now := s.now()
	cfg := &Configuration{
		ID:          uuid.NewString(),
		Name:        name,
		TeamMembers: roster.CloneParticipants(participants),
		Roles:       roster.CloneRoles(roles),
		Date:        now.Format(DateLayout),
		SavedAt:     now,
	}

	prev := s.items
	s.items = append(prev[:len(prev):len(prev)], cfg)
	if err := s.flush(ctx); err != nil {
		s.items = prev
		return nil, err
	}
	return cfg.clone(), nil
}

func (s *service) List(ctx context.Context) ([]*Configuration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	out := make([]*Configuration, len(s.items))
	for i, item := range s.items {
		out[i] = item.clone()
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id string) (*Configuration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	if i := s.indexOf(id); i >= 0 {
		return s.items[i].clone(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *service) Load(ctx context.Context, id string) ([]roster.Participant, []roster.Role, error) {
	cfg, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info(ctx, "team loaded", zap.String("id", cfg.ID), zap.String("name", cfg.Name))
	return cfg.TeamMembers, cfg.Roles, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "configstore.Delete", trace.WithAttributes(
		attribute.String("configuration_id", id),
	))
	defer span.End()

	removed, err := s.delete(ctx, id)
	if !removed && err == nil {
		span.SetAttributes(attribute.Bool("noop", true))
		return nil
	}
	s.record(ctx, span, "delete", err)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "team deleted", zap.String("id", id))
	return nil
}

func (s *service) delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrClosed
	}

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}

	prev := s.items
	next := make([]*Configuration, 0, len(prev)-1)
	next = append(next, prev[:i]...)
	next = append(next, prev[i+1:]...)
	s.items = next
	if err := s.flush(ctx); err != nil {
		s.items = prev
		return false, err
	}
	return true, nil
}

func (s *service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// indexOf returns the position of id or -1. Callers hold s.mu.
func (s *service) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s *service) record(ctx context.Context, span trace.Span, op string, err error) {
	outcome := "success"
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case roster.IsValidation(err):
		outcome = "invalid"
		span.SetStatus(codes.Error, err.Error())
	default:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error(ctx, "configuration store mutation failed",
			zap.String("op", op), zap.Error(err))
	}
	s.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
}
