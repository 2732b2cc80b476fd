package observer

import (
	"context"
	"errors"
	"time"

	"github.com/nevindra/papyrus"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ObservedFetcher wraps a papyrus.Fetcher with OTEL instrumentation.
type ObservedFetcher struct {
	inner papyrus.Fetcher
	inst  *Instruments
}

// WrapFetcher returns an instrumented fetcher that emits traces, metrics,
// and logs for every document download.
func WrapFetcher(inner papyrus.Fetcher, inst *Instruments) *ObservedFetcher {
	return &ObservedFetcher{inner: inner, inst: inst}
}

var _ papyrus.Fetcher = (*ObservedFetcher)(nil)

func (o *ObservedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, span := o.inst.Tracer.Start(ctx, "fetch.document", trace.WithAttributes(
		AttrFetchRef.String(url),
	))
	defer span.End()
	start := time.Now()

	data, err := o.inner.Fetch(ctx, url)

	durationMs := float64(time.Since(start).Milliseconds())
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var perr *papyrus.Error
		if errors.As(err, &perr) {
			span.SetAttributes(AttrErrorKind.String(perr.Kind.String()))
			if perr.Status != 0 {
				span.SetAttributes(AttrFetchStatus.Int(perr.Status))
			}
		}
	}

	span.SetAttributes(AttrFetchBytes.Int(len(data)))

	o.inst.FetchRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
	o.inst.FetchBytes.Add(ctx, int64(len(data)))
	o.inst.FetchDuration.Record(ctx, durationMs)

	// Structured log
	var rec otellog.Record
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetBody(otellog.StringValue("document fetched"))
	rec.AddAttributes(
		otellog.String("fetch.ref", url),
		otellog.Int("fetch.bytes", len(data)),
		otellog.Float64("fetch.duration_ms", durationMs),
		otellog.String("status", status),
	)
	o.inst.Logger.Emit(ctx, rec)

	return data, err
}
