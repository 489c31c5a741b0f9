package messaging

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSPublisher forwards post events to a NATS server.
type NATSPublisher struct {
	conn *nats.Conn
}

func ConnectNATS(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("socialshop"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			zap.L().Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			zap.L().Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	zap.L().Info("Connected to NATS", zap.String("url", nc.ConnectedUrl()))
	return &NATSPublisher{conn: nc}, nil
}

func (p *NATSPublisher) Publish(subject string, data []byte) error {
	if p.conn == nil || p.conn.IsClosed() {
		return nats.ErrConnectionClosed
	}
	return p.conn.Publish(subject, data)
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if p.conn == nil || p.conn.IsClosed() {
		return
	}
	if err := p.conn.Drain(); err != nil {
		zap.L().Warn("NATS drain failed", zap.Error(err))
		p.conn.Close()
	}
	zap.L().Info("NATS connection closed")
}
