package redis

import (
	"context"
	"fmt"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewClient_Connects(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := NewClient(ctx, fmt.Sprintf("redis://%s", mr.Addr()))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "://bad-url")
	if err == nil {
		t.Fatal("expected error for invalid URL")
	}
	if !strings.Contains(err.Error(), "parsing redis URL") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewClient_UnreachableServer(t *testing.T) {
	mr := miniredis.RunT(t)
	url := fmt.Sprintf("redis://%s", mr.Addr())
	mr.Close()

	_, err := NewClient(context.Background(), url)
	if err == nil {
		t.Fatal("expected ping error when server is down")
	}
	if !strings.Contains(err.Error(), "pinging redis") {
		t.Fatalf("unexpected error: %v", err)
	}
}
