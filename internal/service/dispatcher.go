package service

import (
	"context"

	"hub-notifier/internal/config"
	"hub-notifier/internal/fcm"
	"hub-notifier/internal/messaging"

	"go.uber.org/zap"
)

// Outcome - итог передачи сообщения на доставку.
type Outcome struct {
	Mode     string
	Delivery *fcm.Result // только inline
	Queued   bool        // только queue
}

// Dispatcher передает готовое задание на доставку. Ошибки доставки не возвращаются:
// они логируются и отражаются в Outcome.
type Dispatcher interface {
	Dispatch(ctx context.Context, job messaging.PushJob) Outcome
	Mode() string
}

// JobPublisher публикует задание в очередь.
type JobPublisher interface {
	PublishPushJob(ctx context.Context, job messaging.PushJob) error
}

// InlineDispatcher отправляет сразу и ждет агрегированный результат.
type InlineDispatcher struct {
	sender fcm.Sender
	logger *zap.Logger
}

func NewInlineDispatcher(sender fcm.Sender, logger *zap.Logger) *InlineDispatcher {
	return &InlineDispatcher{sender: sender, logger: logger.Named("inline_dispatcher")}
}

func (d *InlineDispatcher) Mode() string { return config.DispatchInline }

func (d *InlineDispatcher) Dispatch(ctx context.Context, job messaging.PushJob) Outcome {
	res := d.sender.Send(ctx, job.Tokens, job.Notification)
	d.logger.Info("Attempted to send FCM notifications",
		zap.String("requestID", job.RequestID),
		zap.String("driver", d.sender.Driver()),
		zap.Int("tokenCount", len(job.Tokens)),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed),
		zap.Int("skipped", res.Skipped),
	)
	return Outcome{Mode: config.DispatchInline, Delivery: &res}
}

// QueueDispatcher публикует задание для воркера и возвращается, не дожидаясь доставки.
type QueueDispatcher struct {
	publisher JobPublisher
	logger    *zap.Logger
}

func NewQueueDispatcher(publisher JobPublisher, logger *zap.Logger) *QueueDispatcher {
	return &QueueDispatcher{publisher: publisher, logger: logger.Named("queue_dispatcher")}
}

func (d *QueueDispatcher) Mode() string { return config.DispatchQueue }

func (d *QueueDispatcher) Dispatch(ctx context.Context, job messaging.PushJob) Outcome {
	if err := d.publisher.PublishPushJob(ctx, job); err != nil {
		d.logger.Error("Failed to queue push job",
			zap.String("requestID", job.RequestID),
			zap.Int("tokenCount", len(job.Tokens)),
			zap.Error(err),
		)
		return Outcome{Mode: config.DispatchQueue, Queued: false}
	}
	return Outcome{Mode: config.DispatchQueue, Queued: true}
}
