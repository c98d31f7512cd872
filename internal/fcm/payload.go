package fcm

import "hub-notifier/internal/domain"

// Ключ и значение click_action, по которым Flutter-клиент открывает приложение.
const (
	ClickActionKey   = "click_action"
	ClickActionValue = "FLUTTER_NOTIFICATION_CLICK"
)

// SendRequest - тело запроса FCM HTTP v1 messages:send.
type SendRequest struct {
	Message Message `json:"message"`
}

type Message struct {
	Token        string              `json:"token"`
	Notification MessageNotification `json:"notification"`
	Data         map[string]string   `json:"data"`
}

type MessageNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// BuildMessage собирает сообщение для одного токена. click_action всегда перезаписывается.
func BuildMessage(token string, n domain.Notification) Message {
	return Message{
		Token:        token,
		Notification: MessageNotification{Title: n.Title, Body: n.Body},
		Data:         mergeData(n.Data),
	}
}

func mergeData(data map[string]string) map[string]string {
	merged := make(map[string]string, len(data)+1)
	for k, v := range data {
		merged[k] = v
	}
	merged[ClickActionKey] = ClickActionValue
	return merged
}
