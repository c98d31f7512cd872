package messaging

import (
	"time"

	"hub-notifier/internal/domain"
)

// PushJob - задание на отправку, которое сервер кладет в очередь в режиме DISPATCH_MODE=queue.
type PushJob struct {
	RequestID    string              `json:"request_id"`
	EventType    string              `json:"event_type"`
	Tokens       []string            `json:"tokens"`
	Notification domain.Notification `json:"notification"`
	CreatedAt    time.Time           `json:"created_at"`
}
