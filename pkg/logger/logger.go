package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config содержит настройки логгера.
type Config struct {
	Level      string // debug, info, warn, error
	Encoding   string // json или console
	OutputPath string // пусто = stdout
	Service    string // значение поля "service" в каждой записи
}

// New собирает ядро zap вручную: уровень, кодировщик и приемник.
// Неизвестный уровень не ошибка, используется info с предупреждением в stderr.
func New(cfg Config) (*zap.Logger, error) {
	sink, _, err := zap.Open(outputPath(cfg.OutputPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open log output %q: %w", cfg.OutputPath, err)
	}

	core := zapcore.NewCore(newEncoder(cfg.Encoding), sink, zap.NewAtomicLevelAt(parseLevel(cfg.Level)))

	opts := []zap.Option{zap.ErrorOutput(zapcore.Lock(os.Stderr))}
	if cfg.Service != "" {
		opts = append(opts, zap.Fields(zap.String("service", cfg.Service)))
	}
	return zap.New(core, opts...), nil
}

func parseLevel(raw string) zapcore.Level {
	if raw == "" {
		return zapcore.InfoLevel
	}
	level, err := zapcore.ParseLevel(strings.ToLower(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level '%s', using 'info'. Error: %v\n", raw, err)
		return zapcore.InfoLevel
	}
	return level
}

// newEncoder - JSON по умолчанию, console только по явному запросу.
func newEncoder(encoding string) zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.CallerKey = zapcore.OmitKey
	encCfg.StacktraceKey = zapcore.OmitKey

	if strings.EqualFold(encoding, "console") {
		return zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewJSONEncoder(encCfg)
}

func outputPath(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}

// TokenPrefix возвращает безопасную для логов часть токена (push-токен, bearer и т.п.).
func TokenPrefix(token string) string {
	const prefixLen = 10
	if len(token) <= prefixLen {
		return token
	}
	return token[:prefixLen] + "..."
}
