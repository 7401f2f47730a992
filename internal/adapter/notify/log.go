package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSink writes notifications to the log instead of delivering them.
// Used when no webhook URL is configured.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a new LogSink.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Send logs the message and always succeeds.
func (s *LogSink) Send(ctx context.Context, contact, message string) error {
	s.logger.Info().
		Str("contact", contact).
		Str("message", message).
		Msg("notification")

	return nil
}
