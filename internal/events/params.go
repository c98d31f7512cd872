package events

import (
	"bytes"
	"encoding/json"
	"fmt"

	"hub-notifier/internal/domain"
)

// chatPreviewLength - сколько символов (рун) сообщения чата попадает в текст пуша.
const chatPreviewLength = 50

type params map[string]any

func decodeParams(raw json.RawMessage) (params, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return params{}, nil
	}
	var p params
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: params must be a JSON object", domain.ErrInvalidParams)
	}
	return p, nil
}

// required возвращает строковый параметр; отсутствие или другой тип - ErrInvalidParams.
func (p params) required(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %s is required", domain.ErrInvalidParams, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", domain.ErrInvalidParams, key)
	}
	return s, nil
}

// optional возвращает строковый параметр или def, если его нет или он null.
func (p params) optional(key, def string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", domain.ErrInvalidParams, key)
	}
	return s, nil
}

// truncateRunes обрезает строку до n кодовых точек.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
