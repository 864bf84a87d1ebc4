package store

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bitmark-hq/compiler/pkg/telemetry/tracing"
)

// Observer receives the outcome of every store operation. The metrics
// collector implements it.
type Observer interface {
	ObserveStore(op string, duration time.Duration, err error)
}

// Instrument wraps s so that each operation is traced and reported to obs.
// ErrNotFound counts as success. obs may be nil.
func Instrument(s Store, obs Observer) Store {
	return &instrumented{
		next:   s,
		obs:    obs,
		tracer: otel.Tracer(tracing.InstrumentationName),
	}
}

type instrumented struct {
	next   Store
	obs    Observer
	tracer trace.Tracer
}

func (s *instrumented) observe(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "store."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("store.operation", op)))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	outcome := err
	if errors.Is(err, ErrNotFound) {
		outcome = nil
	}
	if s.obs != nil {
		s.obs.ObserveStore(op, time.Since(start), outcome)
	}
	tracing.SetError(span, outcome)
	return err
}

func (s *instrumented) Put(ctx context.Context, rec *Record) error {
	return s.observe(ctx, "put", func(ctx context.Context) error {
		return s.next.Put(ctx, rec)
	})
}

func (s *instrumented) Get(ctx context.Context, id string) (rec *Record, err error) {
	err = s.observe(ctx, "get", func(ctx context.Context) error {
		rec, err = s.next.Get(ctx, id)
		return err
	})
	return rec, err
}

func (s *instrumented) Latest(ctx context.Context, file string) (rec *Record, err error) {
	err = s.observe(ctx, "latest", func(ctx context.Context) error {
		rec, err = s.next.Latest(ctx, file)
		return err
	})
	return rec, err
}

func (s *instrumented) List(ctx context.Context, q Query) (recs []*Record, err error) {
	err = s.observe(ctx, "list", func(ctx context.Context) error {
		recs, err = s.next.List(ctx, q)
		return err
	})
	return recs, err
}

func (s *instrumented) Count(ctx context.Context) (n int64, err error) {
	err = s.observe(ctx, "count", func(ctx context.Context) error {
		n, err = s.next.Count(ctx)
		return err
	})
	return n, err
}

func (s *instrumented) DeleteBefore(ctx context.Context, cutoff time.Time) (n int64, err error) {
	err = s.observe(ctx, "delete_before", func(ctx context.Context) error {
		n, err = s.next.DeleteBefore(ctx, cutoff)
		return err
	})
	return n, err
}

func (s *instrumented) DeleteOldest(ctx context.Context, keep int) (n int64, err error) {
	err = s.observe(ctx, "delete_oldest", func(ctx context.Context) error {
		n, err = s.next.DeleteOldest(ctx, keep)
		return err
	})
	return n, err
}

func (s *instrumented) Ping(ctx context.Context) error {
	return s.observe(ctx, "ping", s.next.Ping)
}

func (s *instrumented) Close() error {
	return s.next.Close()
}
