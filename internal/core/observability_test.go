package core

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"readingcore/internal/infra/record/memory"
)

func TestExpvarMetricsRecorderCountsOperations(t *testing.T) {
	ctx := context.Background()
	rec := NewExpvarMetricsRecorder("")
	if !strings.HasPrefix(rec.Name(), "readingcore_engine_metrics_") {
		t.Fatalf("unexpected export name %q", rec.Name())
	}
	s := New(memory.New(), WithoutSeed(), WithMetricsRecorder(rec))
	signIn(t, s)

	if _, err := s.AddBook(ctx, Book{Title: "Swimmy"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.SignIn(ctx, DefaultAccountEmail, "wrong"); err == nil {
		t.Fatalf("expected sign-in failure")
	}

	snap := rec.Snapshot()
	if snap.Results["add_book"]["success"] != 1 {
		t.Fatalf("add_book success = %d", snap.Results["add_book"]["success"])
	}
	if snap.Results["sign_in"]["error"] != 1 {
		t.Fatalf("sign_in error = %d", snap.Results["sign_in"]["error"])
	}
	if _, ok := snap.DurationsMS["add_book"]; !ok {
		t.Fatalf("missing duration for add_book")
	}
}

func TestJSONTracerRecordsSpans(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	s := New(memory.New(), WithoutSeed(), WithTracer(tracer))
	signIn(t, s)

	if _, err := s.AddBook(ctx, Book{Title: "Swimmy"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	var added bool
	for _, e := range tracer.Entries() {
		if e.Operation == "add_book" && e.Status == "success" {
			added = true
		}
	}
	if !added {
		t.Fatalf("no add_book span recorded: %+v", tracer.Entries())
	}
	if !strings.Contains(buf.String(), `"operation":"add_book"`) {
		t.Fatalf("span not serialized: %s", buf.String())
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	rec := NewPrometheusMetricsRecorder(reg)
	s := New(memory.New(), WithoutSeed(), WithMetricsRecorder(rec))
	signIn(t, s)

	if _, err := s.AddBook(ctx, Book{Title: "Swimmy"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var sawCounter, sawHistogram bool
	for _, mf := range families {
		switch mf.GetName() {
		case "readingcore_operations_total":
			sawCounter = true
		case "readingcore_operation_duration_seconds":
			sawHistogram = true
		}
	}
	if !sawCounter || !sawHistogram {
		t.Fatalf("missing collectors: counter=%v histogram=%v", sawCounter, sawHistogram)
	}
}
