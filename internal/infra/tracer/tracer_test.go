package tracer

import (
	"context"
	"errors"
	"testing"

	"consentbridge/internal/infra/config"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TracerConfig{Enabled: false})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}

	// Spans must still be safe to use with the noop provider.
	ctx, span := StartSpan(context.Background(), "test.op",
		WithAttributes(StringAttr("k", "v"), BoolAttr("b", true)))
	if ctx == nil {
		t.Fatal("StartSpan must return a context")
	}
	RecordError(span, errors.New("recorded"))
	span.End()
}

func TestSetupNoopExporter(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TracerConfig{Enabled: true, Exporter: "noop"})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestSetupRejectsUnknownExporter(t *testing.T) {
	if _, err := Setup(context.Background(), config.TracerConfig{Enabled: true, Exporter: "jaeger"}); err == nil {
		t.Fatal("unknown exporter must fail")
	}
}
