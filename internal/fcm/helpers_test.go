package fcm

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

var testKey *rsa.PrivateKey

func rsaKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	if testKey == nil {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		testKey = key
	}
	return testKey
}

func testAccount(t *testing.T, tokenURL string) *ServiceAccount {
	t.Helper()
	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(rsaKey(t)),
	})
	return &ServiceAccount{
		Type:         "service_account",
		ProjectID:    "hub-app",
		PrivateKeyID: "kid-1",
		PrivateKey:   string(keyPEM),
		ClientEmail:  "push@hub-app.iam.gserviceaccount.com",
		TokenURI:     tokenURL,
	}
}

func testAccountJSON(t *testing.T, tokenURL string) string {
	t.Helper()
	raw, err := json.Marshal(testAccount(t, tokenURL))
	require.NoError(t, err)
	return string(raw)
}

// staticTokenSource считает вызовы Token().
type staticTokenSource struct {
	token *oauth2.Token
	err   error
	calls atomic.Int32
}

func (s *staticTokenSource) Token() (*oauth2.Token, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.token, nil
}

func validToken() *oauth2.Token {
	return &oauth2.Token{AccessToken: "ya29.test", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}
}

var errExchange = errors.New("failed to get access token: invalid_grant")
