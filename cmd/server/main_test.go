package main

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/creditdesk/internal/adapter/notify"
	"github.com/iho/creditdesk/internal/infrastructure/config"
)

func TestNewNotificationSink(t *testing.T) {
	log := zerolog.Nop()

	sink := newNotificationSink(&config.Config{NotifyTimeout: time.Second}, log)
	if _, ok := sink.(*notify.LogSink); !ok {
		t.Fatalf("expected log sink without webhook URL, got %T", sink)
	}

	sink = newNotificationSink(&config.Config{
		NotifyWebhookURL: "http://localhost:9090/notify",
		NotifyTimeout:    time.Second,
	}, log)
	if _, ok := sink.(*notify.WebhookSink); !ok {
		t.Fatalf("expected webhook sink with webhook URL, got %T", sink)
	}
}

func TestNewRateLimiter(t *testing.T) {
	if rl := newRateLimiter(&config.Config{RateLimitRPS: 0}); rl != nil {
		t.Fatal("expected nil limiter when rate limiting is disabled")
	}
	if rl := newRateLimiter(&config.Config{RateLimitRPS: 50, RateLimitBurst: 100}); rl == nil {
		t.Fatal("expected limiter when rate limiting is enabled")
	}
}
