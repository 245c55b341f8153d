// Package reveal animates an assignment as a short series of timed frames.
//
// A run emits Ticks frames, one per Interval. The first Ticks-1 frames carry
// cosmetic reshuffles of the final role pool; the last carries the committed
// assignment. Only one run is active per Controller.
package reveal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fyrsmithlabs/roleshuffle/internal/roster"
)

// ErrCanceled is reported by a run stopped before its final frame.
var ErrCanceled = errors.New("reveal canceled")

// Config controls the frame schedule.
type Config struct {
	Ticks    int
	Interval time.Duration
}

// DefaultConfig returns five frames at 200ms.
func DefaultConfig() Config {
	return Config{Ticks: 5, Interval: 200 * time.Millisecond}
}

// Validate checks the schedule.
func (c Config) Validate() error {
	if c.Ticks < 1 {
		return fmt.Errorf("ticks must be >= 1, got %d", c.Ticks)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	return nil
}

// Frame is one step of a run. Participants is a fresh slice the receiver
// may keep.
type Frame struct {
	RunID        string               `json:"runId"`
	Tick         int                  `json:"tick"`
	Total        int                  `json:"total"`
	Final        bool                 `json:"final"`
	Participants []roster.Participant `json:"participants"`
}

// FrameFunc receives frames in tick order from the run's goroutine.
type FrameFunc func(Frame)

// Run tracks one reveal.
type Run struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	result []roster.Participant
	err    error
}

func newRun(id string, cancel context.CancelFunc) *Run {
	return &Run{id: id, cancel: cancel, done: make(chan struct{})}
}

// ID returns the run identifier.
func (r *Run) ID() string { return r.id }

// Done is closed when the run ends for any reason.
func (r *Run) Done() <-chan struct{} { return r.done }

// Result returns the committed assignment, or nil if the run has not
// completed successfully.
func (r *Run) Result() []roster.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return roster.CloneParticipants(r.result)
}

// Err returns nil while running or after completion, and ErrCanceled
// (wrapping the cause) after cancellation.
func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Wait blocks until the run ends or ctx is done.
func (r *Run) Wait(ctx context.Context) ([]roster.Participant, error) {
	select {
	case <-r.done:
		return r.Result(), r.Err()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Run) finish(result []roster.Participant, err error) {
	r.mu.Lock()
	r.result = result
	r.err = err
	r.mu.Unlock()
	r.cancel()
	close(r.done)
}
