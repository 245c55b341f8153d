package blobstore

import (
	"context"
	"errors"
	"time"
)

// Instrument wraps s so every Get and Put is recorded in the package
// Prometheus metrics under the given backend label.
func Instrument(s Store, backend string) Store {
	return &instrumented{next: s, backend: backend}
}

type instrumented struct {
	next    Store
	backend string
}

func (s *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	value, err := s.next.Get(ctx, key)
	s.observe("get", start, err)
	if err == nil {
		BlobBytes.WithLabelValues(s.backend, key).Set(float64(len(value)))
	}
	return value, err
}

func (s *instrumented) Put(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.next.Put(ctx, key, value)
	s.observe("put", start, err)
	if err == nil {
		BlobBytes.WithLabelValues(s.backend, key).Set(float64(len(value)))
	}
	return err
}

func (s *instrumented) Close() error {
	return s.next.Close()
}

func (s *instrumented) observe(op string, start time.Time, err error) {
	OperationDuration.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
	OperationsTotal.WithLabelValues(s.backend, op, result(err)).Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
