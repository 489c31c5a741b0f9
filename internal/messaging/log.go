package messaging

import (
	"go.uber.org/zap"
)

// LogPublisher is used when no broker is configured: events only reach the log.
type LogPublisher struct{}

func (LogPublisher) Publish(subject string, data []byte) error {
	zap.L().Info("event", zap.String("subject", subject), zap.ByteString("payload", data))
	return nil
}
