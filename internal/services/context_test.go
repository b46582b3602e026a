package services_test

import (
	"context"
	"testing"

	"github.com/Farman-RT/QuickSaver/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRequestID(ctx, "req-123")
	ctx = services.WithFetchID(ctx, "0a1b2c3d4e5f6071")

	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
	if id, ok := services.FetchIDFromContext(ctx); !ok || id != "0a1b2c3d4e5f6071" {
		t.Fatalf("unexpected fetch id: %v %v", id, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := services.WithRequestID(context.Background(), "")
	ctx = services.WithFetchID(ctx, "")
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id")
	}
	if _, ok := services.FetchIDFromContext(ctx); ok {
		t.Fatal("expected no fetch id")
	}
}
