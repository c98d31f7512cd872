package fcm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	tokenCacheKeyPrefix = "fcm:access_token:"
	redisCallTimeout    = 2 * time.Second

	// tokenCacheMargin - насколько раньше истечения токен удаляется из Redis.
	tokenCacheMargin = 60 * time.Second
)

// NewCachedTokenSource оборачивает base в oauth2.ReuseTokenSource.
// Если rdb не nil, токен дополнительно делится между инстансами через Redis.
func NewCachedTokenSource(base oauth2.TokenSource, rdb redis.Cmdable, clientEmail string, logger *zap.Logger) oauth2.TokenSource {
	if rdb != nil {
		base = &redisTokenSource{
			base:   base,
			rdb:    rdb,
			key:    tokenCacheKeyPrefix + clientEmail,
			logger: logger.Named("token_cache"),
		}
	}
	return oauth2.ReuseTokenSource(nil, base)
}

type cachedToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Expiry      time.Time `json:"expiry"`
}

// redisTokenSource читает токен из Redis и при промахе делает обмен через base.
// Ошибки Redis не фатальны: логируются, токен берется из base.
type redisTokenSource struct {
	base   oauth2.TokenSource
	rdb    redis.Cmdable
	key    string
	logger *zap.Logger
}

func (s *redisTokenSource) Token() (*oauth2.Token, error) {
	if tok := s.load(); tok != nil {
		return tok, nil
	}

	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.store(tok)
	return tok, nil
}

func (s *redisTokenSource) load() *oauth2.Token {
	ctx, cancel := context.WithTimeout(context.Background(), redisCallTimeout)
	defer cancel()

	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("Failed to read access token from redis", zap.String("key", s.key), zap.Error(err))
		}
		return nil
	}

	var ct cachedToken
	if err := json.Unmarshal(raw, &ct); err != nil {
		s.logger.Warn("Corrupted access token in redis", zap.String("key", s.key), zap.Error(err))
		return nil
	}
	if time.Until(ct.Expiry) <= tokenCacheMargin {
		return nil
	}
	return &oauth2.Token{AccessToken: ct.AccessToken, TokenType: ct.TokenType, Expiry: ct.Expiry}
}

func (s *redisTokenSource) store(tok *oauth2.Token) {
	ttl := time.Until(tok.Expiry) - tokenCacheMargin
	if tok.Expiry.IsZero() || ttl <= 0 {
		return
	}
	raw, err := json.Marshal(cachedToken{AccessToken: tok.AccessToken, TokenType: tok.TokenType, Expiry: tok.Expiry})
	if err != nil {
		s.logger.Warn("Failed to encode access token", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisCallTimeout)
	defer cancel()
	if err := s.rdb.Set(ctx, s.key, raw, ttl).Err(); err != nil {
		s.logger.Warn("Failed to store access token in redis", zap.String("key", s.key), zap.Error(err))
	}
}
