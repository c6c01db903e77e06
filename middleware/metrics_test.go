package middleware_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	mw "github.com/pushkit/reporting/middleware"
)

func setupTestMeter() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return reader, mp
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestMetrics_RecordsDuration(t *testing.T) {
	reader, mp := setupTestMeter()
	m := mw.MetricsWithMeter(mp.Meter("test"))

	_ = m(context.Background(), newTestReport(), func(_ context.Context) error {
		return nil
	})

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "reporting.submission.duration")
	if metric == nil {
		t.Fatal("expected reporting.submission.duration to be recorded")
	}
}

func TestMetrics_CountsByStatus(t *testing.T) {
	reader, mp := setupTestMeter()
	m := mw.MetricsWithMeter(mp.Meter("test"))

	_ = m(context.Background(), newTestReport(), func(_ context.Context) error {
		return nil
	})
	_ = m(context.Background(), newTestReport(), func(_ context.Context) error {
		return errors.New("boom")
	})

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "reporting.submission.count")
	if metric == nil {
		t.Fatal("expected reporting.submission.count to be recorded")
	}

	sum, ok := metric.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("count data = %T, want Sum[int64]", metric.Data)
	}

	statuses := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		if status, found := dp.Attributes.Value(attribute.Key("status")); found {
			statuses[status.AsString()] += dp.Value
		}
	}
	if statuses["ok"] != 1 {
		t.Errorf("ok count = %d, want 1", statuses["ok"])
	}
	if statuses["error"] != 1 {
		t.Errorf("error count = %d, want 1", statuses["error"])
	}
}
