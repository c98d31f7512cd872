package authutils

import (
	"context"
	"errors"
	"fmt"

	"hub-notifier/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")
)

// Claims - поля access-токена пользователя (формат Supabase: sub = ID пользователя).
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserID возвращает идентификатор пользователя из sub.
func (c *Claims) UserID() string {
	return c.Subject
}

// JWTVerifier проверяет HS256 токены пользователей.
type JWTVerifier struct {
	secret   []byte
	audience string
	logger   *zap.Logger
}

// NewJWTVerifier создает верификатор. Пустой audience отключает проверку aud.
// Если логгер nil, используется Noop.
func NewJWTVerifier(secret, audience string, log *zap.Logger) (*JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &JWTVerifier{
		secret:   []byte(secret),
		audience: audience,
		logger:   log.Named("JWTVerifier"),
	}, nil
}

// VerifyToken проверяет подпись, срок и обязательные поля, возвращает claims.
// Сигнатура совместима с middleware.TokenVerifier.
func (v *JWTVerifier) VerifyToken(_ context.Context, tokenString string) (*Claims, error) {
	log := v.logger.With(zap.String("tokenSnippet", logger.TokenPrefix(tokenString)))
	claims := &Claims{}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		log.Warn("Failed to parse or verify token", zap.Error(err))
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		log.Warn("Token is invalid despite no parsing error")
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		log.Warn("Token missing subject")
		return nil, fmt.Errorf("%w: sub missing", ErrTokenInvalid)
	}

	log.Debug("Token verified successfully", zap.String("userID", claims.Subject), zap.String("role", claims.Role))
	return claims, nil
}
