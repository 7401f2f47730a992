package postgres

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNewPoolWithConfig_InvalidURL(t *testing.T) {
	_, err := NewPoolWithConfig(context.Background(), PoolConfig{DatabaseURL: "not-a-url"})
	if err == nil {
		t.Fatal("expected error when parsing invalid URL")
	}
	if !strings.Contains(err.Error(), "parse database URL") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewPoolWithConfig_UnreachableServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewPoolWithConfig(ctx, PoolConfig{
		DatabaseURL: "postgres://creditdesk@127.0.0.1:1/creditdesk?sslmode=disable",
		MaxConns:    1,
	})
	if err == nil {
		t.Fatal("expected error when pool cannot connect")
	}
}
