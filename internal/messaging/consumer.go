package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"hub-notifier/internal/domain"
	"hub-notifier/internal/fcm"
	"hub-notifier/internal/metrics"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// PushSender - то, что воркер вызывает для каждого задания.
type PushSender interface {
	Send(ctx context.Context, tokens []string, n domain.Notification) fcm.Result
}

type Consumer struct {
	conn        *amqp.Connection
	logger      *zap.Logger
	queueName   string
	concurrency int
	processor   *Processor
	stopChannel chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func NewConsumer(conn *amqp.Connection, queueName string, concurrency int, processor *Processor, logger *zap.Logger) *Consumer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Consumer{
		conn:        conn,
		logger:      logger.Named("consumer").With(zap.String("queue", queueName)),
		queueName:   queueName,
		concurrency: concurrency,
		processor:   processor,
		stopChannel: make(chan struct{}),
	}
}

// Start объявляет очередь, запускает concurrency воркеров и блокируется до Stop()
// или закрытия канала доставки.
func (c *Consumer) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}
	defer ch.Close()

	if err := DeclarePushQueue(ch, c.queueName); err != nil {
		return err
	}
	if err := ch.Qos(c.concurrency, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		c.queueName,
		"hub-push-worker", // consumer tag
		false,             // auto-ack
		false,             // exclusive
		false,             // no-local
		false,             // no-wait
		nil,               // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started", zap.Int("concurrency", c.concurrency))

	done := make(chan struct{})
	c.wg.Add(c.concurrency)
	for i := 0; i < c.concurrency; i++ {
		go func(workerID int) {
			defer c.wg.Done()
			log := c.logger.With(zap.Int("worker_id", workerID))
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-msgs:
					if !ok {
						log.Info("Delivery channel closed, worker exiting")
						return
					}
					c.processor.ProcessMessage(ctx, d)
				}
			}
		}(i)
	}
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-c.stopChannel:
		c.logger.Info("Stop requested, waiting for in-flight jobs")
		cancel()
		<-done
	case <-done:
		c.logger.Warn("All workers exited, delivery channel closed")
	}
	c.logger.Info("Consumer stopped")
	return nil
}

// Stop можно вызывать несколько раз.
func (c *Consumer) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChannel)
	})
}

// Processor декодирует PushJob и передает его отправителю.
type Processor struct {
	sender         PushSender
	messageTimeout time.Duration
	logger         *zap.Logger
}

func NewProcessor(sender PushSender, messageTimeout time.Duration, logger *zap.Logger) *Processor {
	if messageTimeout <= 0 {
		messageTimeout = 30 * time.Second
	}
	return &Processor{
		sender:         sender,
		messageTimeout: messageTimeout,
		logger:         logger.Named("processor"),
	}
}

// ProcessMessage подтверждает сообщение после отправки. Повторов нет:
// битое задание и задание, которое не удалось отправить целиком, отклоняются без requeue.
func (p *Processor) ProcessMessage(ctx context.Context, d amqp.Delivery) {
	log := p.logger.With(zap.Uint64("delivery_tag", d.DeliveryTag))

	var job PushJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		log.Error("Failed to decode push job", zap.Error(err), zap.ByteString("body", d.Body))
		metrics.PushJobsTotal.WithLabelValues("rejected").Inc()
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("Failed to nack malformed message", zap.Error(nackErr))
		}
		return
	}
	log = log.With(zap.String("requestID", job.RequestID), zap.String("eventType", job.EventType))

	// Остановка воркера не прерывает уже начатую отправку: задание доводится до конца
	// в пределах messageTimeout и только потом подтверждается.
	processCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.messageTimeout)
	defer cancel()

	res := p.sender.Send(processCtx, job.Tokens, job.Notification)
	log.Info("Push job processed",
		zap.Int("attempted", res.Attempted),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed),
		zap.Int("skipped", res.Skipped),
	)

	if res.Err != nil {
		log.Error("Push job failed", zap.Error(res.Err))
		metrics.PushJobsTotal.WithLabelValues("rejected").Inc()
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("Failed to nack message", zap.Error(nackErr))
		}
		return
	}

	metrics.PushJobsTotal.WithLabelValues("processed").Inc()
	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("Failed to ack message", zap.Error(ackErr))
	}
}
