package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "productfinder"})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := map[float64]string{
		1.5: "ParentBased{root:AlwaysOnSampler",
		0:   "ParentBased{root:AlwaysOffSampler",
		0.5: "ParentBased{root:TraceIDRatioBased{0.5}",
	}
	for rate, prefix := range tests {
		got := Sampler(rate).Description()
		if len(got) < len(prefix) || got[:len(prefix)] != prefix {
			t.Errorf("Sampler(%v) = %q, want prefix %q", rate, got, prefix)
		}
	}
}

func TestTraceIDAndFail(t *testing.T) {
	if TraceID(context.Background()) != "" {
		t.Error("expected empty trace id without span")
	}

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	if TraceID(ctx) == "" {
		t.Error("expected trace id inside span")
	}
	Fail(span, errors.New("boom"))
	span.End()

	ended := rec.Ended()
	if len(ended) != 1 || ended[0].Status().Code != codes.Error {
		t.Fatalf("expected one failed span, got %+v", ended)
	}
}
