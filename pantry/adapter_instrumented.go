package pantry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedAdapter is an Adapter with spans and metrics around every operation.
type InstrumentedAdapter struct {
	adapter *Adapter
	tracer  trace.Tracer

	adds        metric.Int64Counter
	removes     metric.Int64Counter
	refreshes   metric.Int64Counter
	storeErrors metric.Int64Counter
	duration    metric.Float64Histogram
	itemsCount  metric.Int64Gauge
}

// NewInstrumentedAdapter initializes a new instrumented adapter.
func NewInstrumentedAdapter(adapter *Adapter, tracer trace.Tracer, meter metric.Meter) *InstrumentedAdapter {
	adds, _ := meter.Int64Counter("pantry_adds_total",
		metric.WithDescription("Total number of add operations that wrote to the store"))
	removes, _ := meter.Int64Counter("pantry_removes_total",
		metric.WithDescription("Total number of remove operations that wrote to the store"))
	refreshes, _ := meter.Int64Counter("pantry_refreshes_total",
		metric.WithDescription("Total number of full collection fetches"))
	storeErrors, _ := meter.Int64Counter("pantry_store_errors_total",
		metric.WithDescription("Total number of operations that failed against the store"))
	duration, _ := meter.Float64Histogram("pantry_operation_duration_seconds",
		metric.WithDescription("Duration of pantry operations in seconds"))
	itemsCount, _ := meter.Int64Gauge("pantry_items_count",
		metric.WithDescription("Number of distinct items in the last fetched list"))

	return &InstrumentedAdapter{
		adapter:     adapter,
		tracer:      tracer,
		adds:        adds,
		removes:     removes,
		refreshes:   refreshes,
		storeErrors: storeErrors,
		duration:    duration,
		itemsCount:  itemsCount,
	}
}

func (a *InstrumentedAdapter) ListAll(ctx context.Context) ([]Item, error) {
	ctx, span := a.tracer.Start(ctx, "pantry.ListAll")
	defer span.End()
	start := time.Now()

	items, err := a.adapter.ListAll(ctx)
	a.record(ctx, span, "list", start, err)
	a.refreshes.Add(ctx, 1)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("pantry.items", len(items)))
	a.itemsCount.Record(ctx, int64(len(items)))
	return items, nil
}

func (a *InstrumentedAdapter) AddOne(ctx context.Context, name string) error {
	ctx, span := a.tracer.Start(ctx, "pantry.AddOne", trace.WithAttributes(
		attribute.String("pantry.name", Normalize(name)),
	))
	defer span.End()
	start := time.Now()

	wrote, err := a.adapter.addOne(ctx, name)
	a.record(ctx, span, "add", start, err)
	if wrote {
		a.adds.Add(ctx, 1)
	}
	return err
}

func (a *InstrumentedAdapter) RemoveOne(ctx context.Context, name string) error {
	ctx, span := a.tracer.Start(ctx, "pantry.RemoveOne", trace.WithAttributes(
		attribute.String("pantry.name", Normalize(name)),
	))
	defer span.End()
	start := time.Now()

	wrote, err := a.adapter.removeOne(ctx, name)
	a.record(ctx, span, "remove", start, err)
	if wrote {
		a.removes.Add(ctx, 1)
	}
	return err
}

func (a *InstrumentedAdapter) record(ctx context.Context, span trace.Span, op string, start time.Time, err error) {
	opAttr := metric.WithAttributes(attribute.String("op", op))
	a.duration.Record(ctx, time.Since(start).Seconds(), opAttr)
	if err != nil {
		a.storeErrors.Add(ctx, 1, opAttr)
		span.SetStatus(codes.Error, "store operation failed")
		span.RecordError(err)
	}
}
