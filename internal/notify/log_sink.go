package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes messages to the log instead of delivering them. Used in
// development and whenever no gateway URL is configured.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink constructs the sink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(_ context.Context, address, text string) error {
	s.logger.Info("notification",
		zap.String("to", address),
		zap.String("text", text))
	return nil
}
