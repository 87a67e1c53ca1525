package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestContextWithLoggerAndLoggerFromContext(t *testing.T) {
	lg := slog.Default()
	baseCtx := context.Background()

	ctxWithLogger := ContextWithLogger(baseCtx, lg)
	if ctxWithLogger == baseCtx {
		t.Fatal("expected a derived context when attaching a logger")
	}
	if got := LoggerFromContext(ctxWithLogger); got != lg {
		t.Fatalf("LoggerFromContext did not return original logger, got %v", got)
	}
	if got := ContextWithLogger(baseCtx, nil); got != baseCtx {
		t.Fatal("expected original context when logger is nil")
	}
	if got := LoggerFromContext(context.Background()); got == nil {
		t.Fatal("expected default logger for empty context")
	}
}

func TestContextWithRequestIDAndRequestIDFromContext(t *testing.T) {
	ctx := context.Background()
	ctxWithID := ContextWithRequestID(ctx, "req-123")
	if ctxWithID == ctx {
		t.Fatal("expected a derived context when setting request ID")
	}
	if got := RequestIDFromContext(ctxWithID); got != "req-123" {
		t.Fatalf("RequestIDFromContext() = %q, want %q", got, "req-123")
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty string when no request ID present, got %q", got)
	}
	if got := ContextWithRequestID(ctx, ""); got != ctx {
		t.Fatal("expected original context when request ID is empty")
	}
}

func TestContextWithUserID_TagsLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx = ContextWithUserID(ctx, "user-1")

	if got := UserIDFromContext(ctx); got != "user-1" {
		t.Fatalf("UserIDFromContext() = %q", got)
	}
	LoggerFromContext(ctx).Info("hello")
	if !strings.Contains(buf.String(), `"user_id":"user-1"`) {
		t.Fatalf("log line missing user_id: %s", buf.String())
	}
	if got := UserIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected anonymous context, got %q", got)
	}
}
