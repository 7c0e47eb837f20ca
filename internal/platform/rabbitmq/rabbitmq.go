package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"scholarforge/internal/config"
)

// New dials the broker and declares the compress queue so the publisher
// and worker agree on it. An empty URL disables async compression and
// returns a nil connection.
func New(ctx context.Context, cfg config.RabbitMQConfig, logger *zap.Logger) (*amqp.Connection, error) {
	if cfg.URL == "" {
		logger.Warn("rabbitmq url empty, compression runs inline")
		return nil, nil
	}

	conn, err := amqp.DialConfig(cfg.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Dial:      amqp.DefaultDial(3 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq failed: %w", err)
	}

	declared := make(chan error, 1)
	go func() {
		ch, err := conn.Channel()
		if err != nil {
			declared <- fmt.Errorf("open rabbitmq channel failed: %w", err)
			return
		}
		defer ch.Close()
		_, err = DeclareQueue(ch, cfg.CompressQueue)
		declared <- err
	}()

	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	select {
	case <-checkCtx.Done():
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare timeout: %w", checkCtx.Err())
	case err := <-declared:
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		if amqpErr, ok := <-closed; ok && amqpErr != nil {
			logger.Error("rabbitmq connection lost", zap.String("reason", amqpErr.Reason), zap.Int("code", amqpErr.Code))
		}
	}()

	logger.Info("rabbitmq connected", zap.String("queue", cfg.CompressQueue))
	return conn, nil
}
