package app

import (
	"context"
	"testing"
)

func TestRun_RequiresJWTSecret(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JWTSecret = ""

	if err := Run(context.Background(), cfg); err == nil {
		t.Error("expected error when jwt secret is not configured")
	}
}

func TestRun_UnknownStorageDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JWTSecret = "test-secret"
	cfg.StorageDriver = "cassandra"

	if err := Run(context.Background(), cfg); err == nil {
		t.Error("expected error for unknown storage driver")
	}
}
