package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Режимы доставки.
const (
	DispatchInline = "inline"
	DispatchQueue  = "queue"
)

// Драйверы FCM.
const (
	FCMDriverHTTP = "http"
	FCMDriverSDK  = "sdk"
)

type Config struct {
	Env                string        `env:"ENV" env-default:"development"`
	LogLevel           string        `env:"LOG_LEVEL" env-default:"info"`
	ServerPort         string        `env:"SERVER_PORT" env-default:"8080"`
	ServerWriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT"` // 0 = по режиму доставки, см. WriteTimeout
	DefaultLocale      string        `env:"DEFAULT_LOCALE" env-default:"ar"`
	CORSAllowedOrigins string        `env:"CORS_ALLOWED_ORIGINS" env-default:"*"`

	Database DatabaseConfig
	Auth     AuthConfig
	FCM      FCMConfig
	Dispatch DispatchConfig
	RabbitMQ RabbitMQConfig
	Worker   WorkerConfig
	Redis    RedisConfig
}

type DatabaseConfig struct {
	URL string `env:"DATABASE_URL"`
}

type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET"` // может прийти из /run/secrets/auth_jwt_secret
	Audience  string `env:"AUTH_JWT_AUDIENCE" env-default:"authenticated"`
}

type DispatchConfig struct {
	Mode string `env:"DISPATCH_MODE" env-default:"inline"`
}

type RabbitMQConfig struct {
	URI           string `env:"RABBITMQ_URI"`
	PushQueueName string `env:"PUSH_QUEUE_NAME" env-default:"hub_push_jobs"`
}

type WorkerConfig struct {
	Concurrency     int           `env:"WORKER_CONCURRENCY" env-default:"10"`
	MessageTimeout  time.Duration `env:"WORKER_MESSAGE_TIMEOUT" env-default:"30s"`
	HealthCheckPort string        `env:"WORKER_HEALTH_PORT" env-default:"8088"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"` // пусто = общий кеш токенов выключен
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// Enabled сообщает, настроен ли Redis.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// queueWriteTimeout - дедлайн записи ответа в режиме queue, где ответ не ждет доставки.
const queueWriteTimeout = 15 * time.Second

// WriteTimeout возвращает http.Server.WriteTimeout. Явный SERVER_WRITE_TIMEOUT главнее.
// В режиме inline ответ ждет всю рассылку, длительность которой растет с размером хаба,
// поэтому дедлайн записи не ставится (0).
func (c *Config) WriteTimeout() time.Duration {
	if c.ServerWriteTimeout > 0 {
		return c.ServerWriteTimeout
	}
	if c.Dispatch.Mode == DispatchQueue {
		return queueWriteTimeout
	}
	return 0
}

// GetAllowedOrigins разбивает CORS_ALLOWED_ORIGINS по запятой.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// LoadConfig читает .env (если есть), затем переменные окружения, затем секреты из файлов.
// Обязательные поля проверяются отдельно: ValidateServer / ValidateWorker.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			} else {
				log.Printf("Loaded configuration from %s", envFilePath)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	// Секреты необязательны: если переменная пуста, пробуем Docker secret.
	if cfg.Auth.JWTSecret == "" {
		if secret, err := ReadSecret("auth_jwt_secret"); err == nil {
			cfg.Auth.JWTSecret = secret
		}
	}
	if cfg.FCM.ServiceAccountJSON == "" {
		if secret, err := ReadSecret("fcm_service_account_json"); err == nil {
			cfg.FCM.ServiceAccountJSON = secret
		}
	}

	cfg.FCM.Driver = strings.ToLower(cfg.FCM.Driver)
	cfg.Dispatch.Mode = strings.ToLower(cfg.Dispatch.Mode)

	return &cfg, nil
}

// ValidateServer проверяет поля, без которых HTTP-сервер не стартует.
func (c *Config) ValidateServer() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required"))
	}
	switch c.Dispatch.Mode {
	case DispatchInline:
	case DispatchQueue:
		if c.RabbitMQ.URI == "" {
			errs = append(errs, errors.New("RABBITMQ_URI is required when DISPATCH_MODE=queue"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DISPATCH_MODE %q", c.Dispatch.Mode))
	}
	errs = append(errs, c.FCM.validate()...)
	return errors.Join(errs...)
}

// ValidateWorker проверяет поля, нужные воркеру очереди.
func (c *Config) ValidateWorker() error {
	var errs []error
	if c.RabbitMQ.URI == "" {
		errs = append(errs, errors.New("RABBITMQ_URI is required"))
	}
	if c.Worker.Concurrency < 1 {
		errs = append(errs, errors.New("WORKER_CONCURRENCY must be positive"))
	}
	errs = append(errs, c.FCM.validate()...)
	return errors.Join(errs...)
}
