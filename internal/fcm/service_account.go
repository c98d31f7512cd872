package fcm

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultTokenURL - OAuth2 endpoint Google, если в ключе не указан token_uri.
const DefaultTokenURL = "https://oauth2.googleapis.com/token"

// MessagingScope - scope для FCM HTTP v1.
const MessagingScope = "https://www.googleapis.com/auth/firebase.messaging"

// ServiceAccount - нужные поля JSON-ключа сервисного аккаунта.
type ServiceAccount struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`
}

// ParseServiceAccount разбирает JSON-ключ. client_email и private_key обязательны.
func ParseServiceAccount(raw string) (*ServiceAccount, error) {
	var sa ServiceAccount
	if err := json.Unmarshal([]byte(raw), &sa); err != nil {
		return nil, fmt.Errorf("failed to parse service account json: %w", err)
	}
	if sa.ClientEmail == "" {
		return nil, errors.New("service account json has no client_email")
	}
	if sa.PrivateKey == "" {
		return nil, errors.New("service account json has no private_key")
	}
	if sa.TokenURI == "" {
		sa.TokenURI = DefaultTokenURL
	}
	return &sa, nil
}
