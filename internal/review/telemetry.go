package review

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/refract/internal/finding"
)

var (
	tracer = otel.Tracer("refract.review")
	meter  = otel.Meter("refract.review")
)

var (
	fileDuration    metric.Float64Histogram
	semanticLatency metric.Float64Histogram
	findingsTotal   metric.Int64Counter
	stageFailures   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		fileDuration, err = meter.Float64Histogram(
			"review_file_duration_seconds",
			metric.WithDescription("Duration of a single file review"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		semanticLatency, err = meter.Float64Histogram(
			"review_semantic_duration_seconds",
			metric.WithDescription("Latency of semantic classifier calls"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		findingsTotal, err = meter.Int64Counter(
			"review_findings_total",
			metric.WithDescription("Findings reported, by source and severity"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		stageFailures, err = meter.Int64Counter(
			"review_stage_failures_total",
			metric.WithDescription("Pipeline stages that degraded"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startFileSpan(ctx context.Context, path string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Engine.ReviewFile",
		trace.WithAttributes(attribute.String("review.file_path", path)),
	)
}

func startStageSpan(ctx context.Context, stage Stage) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Engine."+string(stage),
		trace.WithAttributes(attribute.String("review.stage", string(stage))),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func recordFileMetrics(ctx context.Context, d time.Duration, findings []finding.Finding) {
	if err := initMetrics(); err != nil {
		return
	}
	fileDuration.Record(ctx, d.Seconds())
	for _, f := range findings {
		if f.IsSentinel() {
			continue
		}
		findingsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("source", string(f.Source)),
			attribute.String("severity", string(f.Severity)),
		))
	}
}

func recordSemanticLatency(ctx context.Context, d time.Duration, ok bool) {
	if err := initMetrics(); err != nil {
		return
	}
	semanticLatency.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("success", ok)))
}

func recordStageFailure(ctx context.Context, stage Stage) {
	if err := initMetrics(); err != nil {
		return
	}
	stageFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", string(stage))))
}
