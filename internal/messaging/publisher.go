package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hub-notifier/internal/metrics"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// PushJobPublisher публикует PushJob в durable-очередь.
type PushJobPublisher struct {
	conn      *amqp.Connection
	queueName string
	logger    *zap.Logger
}

// NewPushJobPublisher проверяет, что очередь объявлена, и возвращает publisher.
func NewPushJobPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (*PushJobPublisher, error) {
	if conn == nil {
		return nil, errors.New("RabbitMQ connection is nil")
	}
	p := &PushJobPublisher{
		conn:      conn,
		queueName: queueName,
		logger:    logger.Named("push_job_publisher").With(zap.String("queue", queueName)),
	}
	if err := p.declareQueue(); err != nil {
		return nil, fmt.Errorf("failed to verify queue %s on init: %w", queueName, err)
	}
	p.logger.Info("PushJobPublisher initialized")
	return p, nil
}

func (p *PushJobPublisher) declareQueue() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()
	return DeclarePushQueue(ch, p.queueName)
}

// DeclarePushQueue объявляет очередь заданий. Параметры должны совпадать у сервера и воркера.
func DeclarePushQueue(ch *amqp.Channel, queueName string) error {
	_, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue '%s': %w", queueName, err)
	}
	return nil
}

// PublishPushJob публикует задание как persistent JSON-сообщение.
func (p *PushJobPublisher) PublishPushJob(ctx context.Context, job PushJob) error {
	log := p.logger.With(zap.String("requestID", job.RequestID), zap.String("eventType", job.EventType))

	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode push job: %w", err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		log.Error("Failed to open channel for publishing", zap.Error(err))
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx,
		"",          // exchange (default)
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    job.RequestID,
			Timestamp:    job.CreatedAt,
			Body:         body,
		},
	)
	if err != nil {
		log.Error("Failed to publish push job", zap.Error(err))
		return fmt.Errorf("failed to publish push job: %w", err)
	}

	metrics.PushJobsTotal.WithLabelValues("published").Inc()
	log.Info("Push job published", zap.Int("tokenCount", len(job.Tokens)))
	return nil
}
