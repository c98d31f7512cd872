package domain

import "encoding/json"

// Membership - связь пользователя с хабом. У пользователя не больше одной строки.
type Membership struct {
	ID          string  `db:"id"`
	UserID      string  `db:"user_id"`
	HubID       string  `db:"hub_id"`
	DisplayName *string `db:"display_name"`
}

// Project - проект хаба.
type Project struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

// Bug - задача/баг в проекте.
type Bug struct {
	ID        string `db:"id"`
	Title     string `db:"title"`
	ProjectID string `db:"project_id"`
	Status    string `db:"status"`
}

// Device - регистрация устройства пользователя. Токен не валидируется.
type Device struct {
	UserID      string `db:"user_id"`
	DeviceToken string `db:"device_token"`
}

// Event - входящий запрос на уведомление. Не сохраняется.
type Event struct {
	Name   string          `json:"function_name"`
	Params json.RawMessage `json:"params"`
	Locale string          `json:"locale,omitempty"`
}

// Notification - видимая часть push-сообщения и data payload.
type Notification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}
