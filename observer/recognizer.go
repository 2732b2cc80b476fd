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

// ObservedRecognizer wraps a papyrus.Recognizer with OTEL instrumentation.
type ObservedRecognizer struct {
	inner papyrus.Recognizer
	inst  *Instruments
}

// WrapRecognizer returns an instrumented recognizer that emits traces,
// metrics, and logs for every OCR call.
func WrapRecognizer(inner papyrus.Recognizer, inst *Instruments) *ObservedRecognizer {
	return &ObservedRecognizer{inner: inner, inst: inst}
}

var _ papyrus.Recognizer = (*ObservedRecognizer)(nil)

func (o *ObservedRecognizer) Name() string { return o.inner.Name() }

func (o *ObservedRecognizer) Recognize(ctx context.Context, req papyrus.RecognizeRequest) (string, error) {
	ctx, span := o.inst.Tracer.Start(ctx, "ocr.recognize", trace.WithAttributes(
		AttrOCRProvider.String(o.inner.Name()),
		AttrOCRImageBytes.Int(len(req.Image)),
	))
	defer span.End()
	start := time.Now()

	text, err := o.inner.Recognize(ctx, req)

	durationMs := float64(time.Since(start).Milliseconds())
	status := "ok"
	kind := ""
	if err != nil {
		status = "error"
		kind = errorKind(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(AttrErrorKind.String(kind))
	}

	span.SetAttributes(AttrOCRTextLength.Int(len(text)))

	o.inst.OCRRequests.Add(ctx, 1, metric.WithAttributes(
		AttrOCRProvider.String(o.inner.Name()),
		attribute.String("status", status),
	))
	o.inst.OCRDuration.Record(ctx, durationMs, metric.WithAttributes(
		AttrOCRProvider.String(o.inner.Name()),
	))

	// Structured log
	var rec otellog.Record
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetBody(otellog.StringValue("ocr call completed"))
	rec.AddAttributes(
		otellog.String("ocr.provider", o.inner.Name()),
		otellog.Int("ocr.image_bytes", len(req.Image)),
		otellog.Int("ocr.text_length", len(text)),
		otellog.Float64("ocr.duration_ms", durationMs),
		otellog.String("status", status),
	)
	if kind != "" {
		rec.AddAttributes(otellog.String("error.kind", kind))
	}
	o.inst.Logger.Emit(ctx, rec)

	return text, err
}

// errorKind extracts the papyrus error classification for span and log
// attributes. Foreign errors report as unknown.
func errorKind(err error) string {
	var perr *papyrus.Error
	if errors.As(err, &perr) {
		return perr.Kind.String()
	}
	return papyrus.KindUnknown.String()
}
