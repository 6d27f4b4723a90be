package logger

import (
	"context"
	"sync"
	"testing"
)

func TestInitAndContextLogging(t *testing.T) {
	Init("development")
	if GetLogger() == nil {
		t.Fatal("expected logger initialized")
	}

	ctx := context.WithValue(context.Background(), "request_id", "req-1")
	l := WithContext(ctx)
	if l == nil {
		t.Fatal("expected contextual logger")
	}

	Info(ctx, "info")
	Debug(ctx, "debug")
	Warn(ctx, "warn")
	Error(ctx, "error")
}

func TestWithContextNil(t *testing.T) {
	Init("development")
	if WithContext(nil) == nil {
		t.Fatal("expected base logger for nil context")
	}
}

func TestWithContextTypedRequestID(t *testing.T) {
	Init("development")
	ctx := context.WithValue(context.Background(), RequestIDKey, "typed-req-id")
	if WithContext(ctx) == nil {
		t.Fatal("expected logger with typed request id context")
	}
}

func TestInit_ProductionAndWithContextWithoutFields(t *testing.T) {
	// reset package singleton to cover production init branch deterministically
	log = nil
	once = sync.Once{}

	Init("production")
	if GetLogger() == nil {
		t.Fatal("expected production logger initialized")
	}

	if WithContext(context.Background()) == nil {
		t.Fatal("expected logger without contextual fields")
	}
}
