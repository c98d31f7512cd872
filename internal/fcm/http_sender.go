package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"hub-notifier/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DriverHTTP - отправка напрямую через FCM HTTP v1.
const DriverHTTP = "http"

// DefaultBaseURL - базовый адрес FCM HTTP v1.
const DefaultBaseURL = "https://fcm.googleapis.com"

type HTTPSenderConfig struct {
	ProjectID      string
	BaseURL        string
	MaxConcurrency int
}

// HTTPSender отправляет по одному запросу messages:send на токен.
type HTTPSender struct {
	endpoint string
	tokens   oauth2.TokenSource
	client   *http.Client
	limit    int
	logger   *zap.Logger
}

var _ Sender = (*HTTPSender)(nil)

func NewHTTPSender(cfg HTTPSenderConfig, tokens oauth2.TokenSource, client *http.Client, logger *zap.Logger) *HTTPSender {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSender{
		endpoint: fmt.Sprintf("%s/v1/projects/%s/messages:send", baseURL, cfg.ProjectID),
		tokens:   tokens,
		client:   client,
		limit:    cfg.MaxConcurrency,
		logger:   logger.Named("fcm_http_sender"),
	}
}

func (s *HTTPSender) Driver() string {
	return DriverHTTP
}

// Send получает access token один раз и рассылает сообщения пулом.
// Если токен получить не удалось, ни один запрос не отправляется.
func (s *HTTPSender) Send(ctx context.Context, tokens []string, n domain.Notification) Result {
	if len(tokens) == 0 {
		return Result{}
	}

	accessToken, err := s.tokens.Token()
	if err != nil {
		s.logger.Error("General error sending FCM notifications", zap.Int("tokenCount", len(tokens)), zap.Error(err))
		return failAll(DriverHTTP, tokens, err)
	}

	return fanOut(ctx, DriverHTTP, s.limit, tokens, n, func(ctx context.Context, msg Message) error {
		return s.post(ctx, accessToken, msg)
	}, s.logger)
}

func (s *HTTPSender) post(ctx context.Context, accessToken *oauth2.Token, msg Message) error {
	payload, err := json.Marshal(SendRequest{Message: msg})
	if err != nil {
		return fmt.Errorf("failed to encode fcm message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build fcm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	accessToken.SetAuthHeader(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fcm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("fcm request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
