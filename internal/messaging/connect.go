package messaging

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Connect подключается к RabbitMQ, повторяя попытки с фиксированной паузой.
func Connect(uri string, maxRetries int, retryDelay time.Duration, logger *zap.Logger) (*amqp.Connection, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var err error
	for i := 0; i < maxRetries; i++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(uri)
		if err == nil {
			logger.Info("Connected to RabbitMQ")
			go watchClose(conn, logger)
			return conn, nil
		}
		logger.Warn("Failed to connect to RabbitMQ, retrying",
			zap.Error(err),
			zap.Int("attempt", i+1),
			zap.Duration("delay", retryDelay),
		)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}

func watchClose(conn *amqp.Connection, logger *zap.Logger) {
	closeErr := <-conn.NotifyClose(make(chan *amqp.Error, 1))
	if closeErr != nil {
		logger.Error("RabbitMQ connection closed", zap.Error(closeErr))
	}
}
