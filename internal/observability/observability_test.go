package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/reviewhub/internal/actorctx"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestClassifyDBErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unique", &pgconn.PgError{Code: "23505"}, "unique_violation"},
		{"fk", &pgconn.PgError{Code: "23503"}, "foreign_key_violation"},
		{"other_pg", &pgconn.PgError{Code: "42P01"}, "pg_42P01"},
		{"timeout", context.DeadlineExceeded, "timeout"},
		{"connection", errors.New("connection refused"), "connection"},
		{"unknown", errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyDBErr(tt.err); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestObserveDB(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	wantErr := &pgconn.PgError{Code: "23505"}
	err := p.ObserveDB("users.create", func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("ObserveDB must return fn's error, got %v", err)
	}

	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.create", "unique_violation")); got != 1 {
		t.Fatalf("got %v errors want 1", got)
	}

	var nilProm *Prom
	called := false
	if err := nilProm.ObserveDB("noop", func() error { called = true; return nil }); err != nil || !called {
		t.Fatalf("nil prom should still run fn, err=%v called=%v", err, called)
	}
}

func TestObserveUpload(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	p.ObserveUpload("image", 100, 10*time.Millisecond, nil)
	p.ObserveUpload("image", 50, 10*time.Millisecond, errors.New("denied"))

	if got := testutil.ToFloat64(p.UploadsTotal.WithLabelValues("image", "ok")); got != 1 {
		t.Fatalf("ok uploads: got %v", got)
	}
	if got := testutil.ToFloat64(p.UploadsTotal.WithLabelValues("image", "error")); got != 1 {
		t.Fatalf("failed uploads: got %v", got)
	}
	if got := testutil.ToFloat64(p.UploadBytes.WithLabelValues("image")); got != 100 {
		t.Fatalf("bytes: got %v want 100", got)
	}
}

func TestTraceHandlerAddsIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "dev")

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	log.InfoContext(ctx, "hello")
	span.End()

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal log line: %v (%s)", err, buf.String())
	}

	if rec["trace_id"] != span.SpanContext().TraceID().String() {
		t.Fatalf("trace_id mismatch: %v", rec["trace_id"])
	}
	if rec["span_id"] == nil {
		t.Fatal("missing span_id")
	}
}

func TestTraceHandlerAddsActor(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	log.InfoContext(actorctx.WithUserID(context.Background(), "user-1"), "review created")
	log.InfoContext(context.Background(), "anonymous")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("got %d log lines", len(lines))
	}

	var withActor, without map[string]any
	if err := json.Unmarshal(lines[0], &withActor); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := json.Unmarshal(lines[1], &without); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if withActor["actor_id"] != "user-1" {
		t.Fatalf("actor_id: got %v", withActor["actor_id"])
	}
	if _, ok := without["actor_id"]; ok {
		t.Fatal("actor_id must be absent without an authenticated user")
	}
	if _, ok := without["trace_id"]; ok {
		t.Fatal("trace_id must be absent without a span")
	}
}

func TestInitTracerWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracingConfig{ServiceName: "reviewhub-test", Env: "test"})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	_, span := otel.Tracer(TracerName).Start(context.Background(), "op")
	defer span.End()

	if !span.SpanContext().IsValid() {
		t.Fatal("spans should carry ids even without an exporter")
	}
}
