package fcm

import (
	"context"
	"sync/atomic"

	"hub-notifier/internal/domain"
	"hub-notifier/internal/metrics"
	"hub-notifier/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultMaxConcurrency = 10

// Result - агрегированный итог отправки. Attempted = Succeeded + Failed.
type Result struct {
	Attempted int   `json:"attempted"`
	Succeeded int   `json:"succeeded"`
	Failed    int   `json:"failed"`
	Skipped   int   `json:"skipped"`
	Err       error `json:"-"` // ошибка уровня всей отправки (например, обмен токена)
}

// Sender отправляет одно сообщение на каждый токен. Ошибки доставки отражаются только в Result.
type Sender interface {
	Send(ctx context.Context, tokens []string, n domain.Notification) Result
	Driver() string
}

// deliverFunc доставляет одно сообщение.
type deliverFunc func(ctx context.Context, msg Message) error

// fanOut рассылает сообщения пулом не больше limit горутин и ждет завершения всех.
// Дубликаты токенов не удаляются; ошибка одного токена не отменяет остальные.
func fanOut(ctx context.Context, driver string, limit int, tokens []string, n domain.Notification, deliver deliverFunc, log *zap.Logger) Result {
	if limit < 1 {
		limit = defaultMaxConcurrency
	}

	var succeeded, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(limit)

	for _, token := range tokens {
		msg := BuildMessage(token, n)
		g.Go(func() error {
			if err := deliver(ctx, msg); err != nil {
				failed.Add(1)
				metrics.PushTotal.WithLabelValues(driver, metrics.ResultFailure).Inc()
				log.Error("FCM delivery failed",
					zap.String("token", logger.TokenPrefix(msg.Token)),
					zap.Error(err),
				)
				return nil
			}
			succeeded.Add(1)
			metrics.PushTotal.WithLabelValues(driver, metrics.ResultSuccess).Inc()
			return nil
		})
	}
	_ = g.Wait()

	res := Result{
		Attempted: len(tokens),
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
	}
	log.Info("FCM fan-out finished",
		zap.Int("attempted", res.Attempted),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed),
	)
	return res
}

// failAll - результат, когда отправка невозможна для всех токенов сразу.
func failAll(driver string, tokens []string, err error) Result {
	metrics.PushTotal.WithLabelValues(driver, metrics.ResultFailure).Add(float64(len(tokens)))
	return Result{Attempted: len(tokens), Failed: len(tokens), Err: err}
}

// DriverDisabled - имя драйвера без учетных данных.
const DriverDisabled = "disabled"

// disabledSender используется при config.StateUnconfigured: ничего не отправляет.
type disabledSender struct {
	logger *zap.Logger
}

func NewDisabledSender(logger *zap.Logger) Sender {
	return &disabledSender{logger: logger.Named("fcm_disabled")}
}

func (s *disabledSender) Send(_ context.Context, tokens []string, _ domain.Notification) Result {
	if len(tokens) == 0 {
		return Result{}
	}
	s.logger.Error("FCM credentials are not set (FCM_PROJECT_ID or FCM_SERVICE_ACCOUNT_JSON), skipping push",
		zap.Int("tokenCount", len(tokens)),
	)
	metrics.PushTotal.WithLabelValues(DriverDisabled, metrics.ResultSkipped).Add(float64(len(tokens)))
	return Result{Skipped: len(tokens)}
}

func (s *disabledSender) Driver() string {
	return DriverDisabled
}
