package config

import (
	"errors"
	"fmt"
	"time"
)

// FCMState - типизированное состояние учетных данных FCM.
type FCMState int

const (
	// StateUnconfigured - нет FCM_PROJECT_ID или FCM_SERVICE_ACCOUNT_JSON; отправка превращается в no-op.
	StateUnconfigured FCMState = iota
	// StateConfigured - оба значения заданы.
	StateConfigured
)

func (s FCMState) String() string {
	if s == StateConfigured {
		return "configured"
	}
	return "unconfigured"
}

type FCMConfig struct {
	ProjectID          string        `env:"FCM_PROJECT_ID"`
	ServiceAccountJSON string        `env:"FCM_SERVICE_ACCOUNT_JSON"`
	Driver             string        `env:"FCM_DRIVER" env-default:"http"`
	BaseURL            string        `env:"FCM_BASE_URL" env-default:"https://fcm.googleapis.com"`
	MaxConcurrency     int           `env:"FCM_MAX_CONCURRENCY" env-default:"10"`
	RequestTimeout     time.Duration `env:"FCM_REQUEST_TIMEOUT" env-default:"10s"`
}

// State возвращает состояние учетных данных.
func (c FCMConfig) State() FCMState {
	if c.ProjectID == "" || c.ServiceAccountJSON == "" {
		return StateUnconfigured
	}
	return StateConfigured
}

func (c FCMConfig) validate() []error {
	var errs []error
	if c.Driver != FCMDriverHTTP && c.Driver != FCMDriverSDK {
		errs = append(errs, fmt.Errorf("unknown FCM_DRIVER %q", c.Driver))
	}
	if c.MaxConcurrency < 1 {
		errs = append(errs, errors.New("FCM_MAX_CONCURRENCY must be positive"))
	}
	return errs
}
