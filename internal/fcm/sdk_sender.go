package fcm

import (
	"context"
	"fmt"

	"hub-notifier/internal/domain"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// DriverSDK - отправка через Firebase Admin SDK.
const DriverSDK = "sdk"

// messagingClient - часть *messaging.Client, которая нужна отправителю.
type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// SDKSender отправляет через messaging.Client.Send, по одному вызову на токен.
// Аутентификацию сервисного аккаунта выполняет сам SDK.
type SDKSender struct {
	client messagingClient
	limit  int
	logger *zap.Logger
}

var _ Sender = (*SDKSender)(nil)

// NewSDKSender инициализирует Firebase App из JSON-ключа.
func NewSDKSender(ctx context.Context, projectID, credentialsJSON string, maxConcurrency int, logger *zap.Logger) (*SDKSender, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsJSON([]byte(credentialsJSON)))
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get firebase messaging client: %w", err)
	}
	logger.Info("FCM SDK sender initialized", zap.String("projectID", projectID))
	return newSDKSender(client, maxConcurrency, logger), nil
}

func newSDKSender(client messagingClient, maxConcurrency int, logger *zap.Logger) *SDKSender {
	return &SDKSender{
		client: client,
		limit:  maxConcurrency,
		logger: logger.Named("fcm_sdk_sender"),
	}
}

func (s *SDKSender) Driver() string {
	return DriverSDK
}

func (s *SDKSender) Send(ctx context.Context, tokens []string, n domain.Notification) Result {
	if len(tokens) == 0 {
		return Result{}
	}
	return fanOut(ctx, DriverSDK, s.limit, tokens, n, func(ctx context.Context, msg Message) error {
		if _, err := s.client.Send(ctx, toSDKMessage(msg)); err != nil {
			if messaging.IsUnregistered(err) {
				return fmt.Errorf("token is unregistered: %w", err)
			}
			return err
		}
		return nil
	}, s.logger)
}

func toSDKMessage(msg Message) *messaging.Message {
	return &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Notification.Title,
			Body:  msg.Notification.Body,
		},
		Data: msg.Data,
	}
}
