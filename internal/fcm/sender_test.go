package fcm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hub-notifier/internal/domain"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNotification = domain.Notification{
	Title: "مشروع جديد",
	Body:  `Amina أنشأ مشروعًا جديدًا: "Alpha"`,
	Data:  map[string]string{"event_type": "notify_new_project", "hub_id": "hub-1"},
}

// fakeFCM записывает полученные сообщения и отвечает 500 для токенов из failTokens.
type fakeFCM struct {
	mu         sync.Mutex
	received   []SendRequest
	auth       []string
	failTokens map[string]bool
	delay      time.Duration
	inFlight   atomic.Int32
	maxFlight  atomic.Int32
}

func (f *fakeFCM) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		prev := f.maxFlight.Load()
		if cur <= prev || f.maxFlight.CompareAndSwap(prev, cur) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.received = append(f.received, req)
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	f.mu.Unlock()

	if r.URL.Path != "/v1/projects/hub-app/messages:send" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if f.failTokens[req.Message.Token] {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"status":"INTERNAL"}}`))
		return
	}
	_, _ = w.Write([]byte(`{"name":"projects/hub-app/messages/1"}`))
}

func newTestHTTPSender(srv *httptest.Server, tokens *staticTokenSource, limit int) *HTTPSender {
	return NewHTTPSender(HTTPSenderConfig{
		ProjectID:      "hub-app",
		BaseURL:        srv.URL + "/",
		MaxConcurrency: limit,
	}, tokens, srv.Client(), zap.NewNop())
}

func TestHTTPSender_SendsOneRequestPerToken(t *testing.T) {
	fake := &fakeFCM{failTokens: map[string]bool{"tok-bad": true}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	tokens := &staticTokenSource{token: validToken()}
	sender := newTestHTTPSender(srv, tokens, 10)

	res := sender.Send(context.Background(), []string{"tok-1", "tok-bad", "tok-1"}, testNotification)

	assert.Equal(t, Result{Attempted: 3, Succeeded: 2, Failed: 1}, res)
	assert.EqualValues(t, 1, tokens.calls.Load())
	require.Len(t, fake.received, 3)
	for i, req := range fake.received {
		assert.Equal(t, "Bearer ya29.test", fake.auth[i])
		assert.Equal(t, testNotification.Title, req.Message.Notification.Title)
		assert.Equal(t, testNotification.Body, req.Message.Notification.Body)
		assert.Equal(t, "FLUTTER_NOTIFICATION_CLICK", req.Message.Data["click_action"])
		assert.Equal(t, "notify_new_project", req.Message.Data["event_type"])
	}
}

func TestHTTPSender_EmptyTokensIsNoop(t *testing.T) {
	fake := &fakeFCM{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	tokens := &staticTokenSource{token: validToken()}
	res := newTestHTTPSender(srv, tokens, 10).Send(context.Background(), nil, testNotification)

	assert.Equal(t, Result{}, res)
	assert.Zero(t, tokens.calls.Load())
	assert.Empty(t, fake.received)
}

func TestHTTPSender_TokenExchangeFailureSendsNothing(t *testing.T) {
	fake := &fakeFCM{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	tokens := &staticTokenSource{err: errExchange}
	res := newTestHTTPSender(srv, tokens, 10).Send(context.Background(), []string{"a", "b"}, testNotification)

	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 0, res.Succeeded)
	assert.ErrorIs(t, res.Err, errExchange)
	assert.Empty(t, fake.received)
}

func TestHTTPSender_RespectsConcurrencyLimit(t *testing.T) {
	fake := &fakeFCM{delay: 20 * time.Millisecond}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	tokens := make([]string, 12)
	for i := range tokens {
		tokens[i] = "tok"
	}
	res := newTestHTTPSender(srv, &staticTokenSource{token: validToken()}, 3).Send(context.Background(), tokens, testNotification)

	assert.Equal(t, 12, res.Succeeded)
	assert.LessOrEqual(t, fake.maxFlight.Load(), int32(3))
}

func TestHTTPSender_TransportErrorCountsAsFailure(t *testing.T) {
	srv := httptest.NewServer(&fakeFCM{})
	sender := newTestHTTPSender(srv, &staticTokenSource{token: validToken()}, 2)
	srv.Close()

	res := sender.Send(context.Background(), []string{"a", "b"}, testNotification)
	assert.Equal(t, Result{Attempted: 2, Failed: 2}, res)
}

func TestDisabledSender(t *testing.T) {
	s := NewDisabledSender(zap.NewNop())
	assert.Equal(t, DriverDisabled, s.Driver())
	assert.Equal(t, Result{Skipped: 2}, s.Send(context.Background(), []string{"a", "b"}, testNotification))
	assert.Equal(t, Result{}, s.Send(context.Background(), nil, testNotification))
}

func TestBuildMessage_RoundTrip(t *testing.T) {
	msg := BuildMessage("tok-1", testNotification)
	raw, err := json.Marshal(SendRequest{Message: msg})
	require.NoError(t, err)

	var decoded SendRequest
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "tok-1", decoded.Message.Token)
	assert.Equal(t, testNotification.Title, decoded.Message.Notification.Title)
	assert.Equal(t, testNotification.Body, decoded.Message.Notification.Body)
	assert.Equal(t, map[string]string{
		"event_type":   "notify_new_project",
		"hub_id":       "hub-1",
		"click_action": "FLUTTER_NOTIFICATION_CLICK",
	}, decoded.Message.Data)
	// входной map не изменяется
	assert.NotContains(t, testNotification.Data, "click_action")
}

func TestBuildMessage_ClickActionOverridesData(t *testing.T) {
	msg := BuildMessage("t", domain.Notification{Data: map[string]string{"click_action": "OPEN"}})
	assert.Equal(t, "FLUTTER_NOTIFICATION_CLICK", msg.Data["click_action"])
}

type fakeMessagingClient struct {
	mu   sync.Mutex
	sent []*messaging.Message
	fail map[string]bool
}

func (c *fakeMessagingClient) Send(_ context.Context, m *messaging.Message) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, m)
	if c.fail[m.Token] {
		return "", errors.New("registration-token-not-registered")
	}
	return "projects/hub-app/messages/1", nil
}

func TestSDKSender(t *testing.T) {
	client := &fakeMessagingClient{fail: map[string]bool{"gone": true}}
	s := newSDKSender(client, 4, zap.NewNop())

	res := s.Send(context.Background(), []string{"a", "gone", "b"}, testNotification)

	assert.Equal(t, Result{Attempted: 3, Succeeded: 2, Failed: 1}, res)
	assert.Equal(t, DriverSDK, s.Driver())
	require.Len(t, client.sent, 3)
	for _, m := range client.sent {
		assert.Equal(t, testNotification.Title, m.Notification.Title)
		assert.Equal(t, "FLUTTER_NOTIFICATION_CLICK", m.Data["click_action"])
	}
}
