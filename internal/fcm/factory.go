package fcm

import (
	"context"
	"fmt"
	"net/http"

	"hub-notifier/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewSender выбирает реализацию по состоянию учетных данных и FCM_DRIVER.
// rdb может быть nil: тогда access token кешируется только в процессе.
func NewSender(ctx context.Context, cfg config.FCMConfig, rdb redis.Cmdable, logger *zap.Logger) (Sender, error) {
	if cfg.State() == config.StateUnconfigured {
		logger.Warn("FCM credentials are not set, push delivery is disabled")
		return NewDisabledSender(logger), nil
	}

	switch cfg.Driver {
	case config.FCMDriverSDK:
		sender, err := NewSDKSender(ctx, cfg.ProjectID, cfg.ServiceAccountJSON, cfg.MaxConcurrency, logger)
		if err != nil {
			return nil, err
		}
		return sender, nil
	case config.FCMDriverHTTP, "":
		account, err := ParseServiceAccount(cfg.ServiceAccountJSON)
		if err != nil {
			return nil, err
		}
		client := &http.Client{Timeout: cfg.RequestTimeout}
		assertions, err := NewAssertionTokenSource(account, client, logger)
		if err != nil {
			return nil, err
		}
		tokens := NewCachedTokenSource(assertions, rdb, account.ClientEmail, logger)
		logger.Info("FCM HTTP sender initialized",
			zap.String("projectID", cfg.ProjectID),
			zap.String("clientEmail", account.ClientEmail),
			zap.Bool("sharedTokenCache", rdb != nil),
		)
		return NewHTTPSender(HTTPSenderConfig{
			ProjectID:      cfg.ProjectID,
			BaseURL:        cfg.BaseURL,
			MaxConcurrency: cfg.MaxConcurrency,
		}, tokens, client, logger), nil
	default:
		return nil, fmt.Errorf("unknown FCM driver %q", cfg.Driver)
	}
}
