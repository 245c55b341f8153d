package assign

import (
	"context"
	"math/rand/v2"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fyrsmithlabs/roleshuffle/internal/roster"
	"github.com/fyrsmithlabs/roleshuffle/internal/telemetry"
)

const instrumentationName = "github.com/fyrsmithlabs/roleshuffle/internal/assign"

// Source supplies uniform integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// lockedSource serializes a caller-supplied source. The engine draws from
// both request handlers and reveal goroutines, and *rand.Rand is not safe
// for concurrent use.
type lockedSource struct {
	mu  sync.Mutex
	src Source
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.IntN(n)
}

// Engine computes role assignments. The zero value is not usable; call New.
type Engine struct {
	src   Source
	meter metric.Meter

	plans metric.Int64Counter
}

// Option configures an Engine.
type Option func(*Engine)

// WithSource replaces the process-wide random source, for tests. Draws from
// src are serialized by the engine.
func WithSource(src Source) Option {
	return func(e *Engine) {
		if src != nil {
			e.src = &lockedSource{src: src}
		}
	}
}

// WithMeter sets the meter used to count assignments.
func WithMeter(m metric.Meter) Option {
	return func(e *Engine) {
		if m != nil {
			e.meter = m
		}
	}
}

// New creates an engine backed by math/rand/v2's auto-seeded source.
func New(opts ...Option) *Engine {
	e := &Engine{src: globalSource{}, meter: otel.Meter(instrumentationName)}
	for _, opt := range opts {
		opt(e)
	}
	e.plans = telemetry.Int64Counter(e.meter, "roleshuffle.assign.plans_total",
		"Assignments computed by outcome")
	return e
}

// Assign returns a copy of participants, in the same order, each labeled
// with one role name.
//
// It fails with roster.ErrEmptyParticipants when participants is empty and
// with roster.ErrEmptyRoles when roles is empty, checked in that order.
func (e *Engine) Assign(participants []roster.Participant, roles []roster.Role) ([]roster.Participant, error) {
	plan, err := e.Plan(participants, roles)
	if err != nil {
		return nil, err
	}
	return plan.Final(), nil
}

// Plan computes the final assignment once and keeps the shuffled pool so
// callers can derive cosmetic reshuffles of the same multiset.
func (e *Engine) Plan(participants []roster.Participant, roles []roster.Role) (*Plan, error) {
	pool, err := BuildPool(participants, roles)
	if err != nil {
		e.count("rejected")
		return nil, err
	}
	e.count("planned")
	return &Plan{
		participants: roster.CloneParticipants(participants),
		pool:         e.shuffleInPlace(pool),
	}, nil
}

// Pool returns the unshuffled, truncated role pool for participants.
func (e *Engine) Pool(participants []roster.Participant, roles []roster.Role) ([]string, error) {
	return BuildPool(participants, roles)
}

func (e *Engine) count(outcome string) {
	e.plans.Add(context.Background(), 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// Shuffle returns a uniformly permuted copy of pool.
func (e *Engine) Shuffle(pool []string) []string {
	return e.shuffleInPlace(append([]string(nil), pool...))
}

// shuffleInPlace is Fisher–Yates: for i from the last index down to 1, swap
// with a uniform index in [0, i].
func (e *Engine) shuffleInPlace(pool []string) []string {
	for i := len(pool) - 1; i > 0; i-- {
		j := e.src.IntN(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool
}

// BuildPool returns the unshuffled role pool for participants: whole cycles
// of role names in order, truncated to len(participants).
func BuildPool(participants []roster.Participant, roles []roster.Role) ([]string, error) {
	if len(participants) == 0 {
		return nil, roster.ErrEmptyParticipants
	}
	if len(roles) == 0 {
		return nil, roster.ErrEmptyRoles
	}

	names := roster.RoleNames(roles)
	pool := make([]string, 0, len(participants)+len(names))
	for len(pool) < len(participants) {
		pool = append(pool, names...)
	}
	return pool[:len(participants):len(participants)], nil
}

// Label zips pool onto participants by position and returns new values.
// Participants beyond the end of pool get no role.
func Label(participants []roster.Participant, pool []string) []roster.Participant {
	out := make([]roster.Participant, len(participants))
	for k, p := range participants {
		p.AssignedRole = ""
		if k < len(pool) {
			p.AssignedRole = pool[k]
		}
		out[k] = p
	}
	return out
}
