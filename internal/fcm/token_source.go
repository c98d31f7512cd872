package fcm

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hub-notifier/internal/metrics"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	jwtBearerGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionLifetime  = time.Hour
	maxErrorBodyBytes  = 4 << 10
)

// AssertionTokenSource обменивает RS256 JWT-assertion сервисного аккаунта на access token.
// Каждый вызов Token() - новый обмен; переиспользование обеспечивает NewCachedTokenSource.
type AssertionTokenSource struct {
	account *ServiceAccount
	key     *rsa.PrivateKey
	client  *http.Client
	now     func() time.Time
	logger  *zap.Logger
}

var _ oauth2.TokenSource = (*AssertionTokenSource)(nil)

func NewAssertionTokenSource(account *ServiceAccount, client *http.Client, logger *zap.Logger) (*AssertionTokenSource, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(account.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account private key: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &AssertionTokenSource{
		account: account,
		key:     key,
		client:  client,
		now:     time.Now,
		logger:  logger.Named("token_source"),
	}, nil
}

// Token реализует oauth2.TokenSource. Таймаут задается http.Client.
func (s *AssertionTokenSource) Token() (*oauth2.Token, error) {
	return s.TokenContext(context.Background())
}

// TokenContext выполняет один обмен assertion -> access token.
func (s *AssertionTokenSource) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	now := s.now()
	assertion, err := s.assertion(now)
	if err != nil {
		metrics.TokenExchangeTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, err
	}

	tok, err := s.exchange(ctx, assertion, now)
	if err != nil {
		metrics.TokenExchangeTotal.WithLabelValues(metrics.ResultFailure).Inc()
		s.logger.Error("Access token exchange failed", zap.String("clientEmail", s.account.ClientEmail), zap.Error(err))
		return nil, err
	}
	metrics.TokenExchangeTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	s.logger.Debug("Access token obtained", zap.Time("expiry", tok.Expiry))
	return tok, nil
}

func (s *AssertionTokenSource) assertion(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   s.account.ClientEmail,
		"scope": MessagingScope,
		"aud":   s.account.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if s.account.PrivateKeyID != "" {
		token.Header["kid"] = s.account.PrivateKeyID
	}
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token assertion: %w", err)
	}
	return signed, nil
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (s *AssertionTokenSource) exchange(ctx context.Context, assertion string, now time.Time) (*oauth2.Token, error) {
	form := url.Values{
		"grant_type": {jwtBearerGrantType},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.account.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	var tr tokenResponse
	decodeErr := json.Unmarshal(body, &tr)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && tr.ErrorDescription != "" {
			return nil, fmt.Errorf("failed to get access token: %s", tr.ErrorDescription)
		}
		return nil, fmt.Errorf("failed to get access token: %s", strings.TrimSpace(string(body)))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", decodeErr)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("failed to get access token: %s", strings.TrimSpace(string(body)))
	}

	lifetime := assertionLifetime
	if tr.ExpiresIn > 0 {
		lifetime = time.Duration(tr.ExpiresIn) * time.Second
	}
	tokenType := tr.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tokenType,
		Expiry:      now.Add(lifetime),
	}, nil
}
