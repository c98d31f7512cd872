package repository

import (
	"context"

	"hub-notifier/internal/domain"

	"github.com/georgysavva/scany/v2/pgxscan"
	"go.uber.org/zap"
)

const getDeviceTokensByUserIDsQuery = `
	SELECT device_token
	FROM user_devices
	WHERE user_id = ANY($1::uuid[])`

// DeviceRepository читает зарегистрированные токены устройств.
type DeviceRepository struct {
	db     DBTX
	logger *zap.Logger
}

func NewDeviceRepository(db DBTX, logger *zap.Logger) *DeviceRepository {
	return &DeviceRepository{
		db:     db,
		logger: logger.Named("device_repo"),
	}
}

// TokensByUserIDs возвращает токены всех устройств указанных пользователей.
// Дубликаты не удаляются. Пустой список пользователей - пустой результат без запроса.
func (r *DeviceRepository) TokensByUserIDs(ctx context.Context, userIDs []string) ([]string, error) {
	tokens := make([]string, 0)
	if len(userIDs) == 0 {
		return tokens, nil
	}
	if err := pgxscan.Select(ctx, r.db, &tokens, getDeviceTokensByUserIDsQuery, userIDs); err != nil {
		r.logger.Error("Failed to query device tokens", zap.Int("userCount", len(userIDs)), zap.Error(err))
		return nil, &domain.DataLayerError{Op: "querying device tokens", Err: err}
	}
	r.logger.Debug("Fetched device tokens", zap.Int("userCount", len(userIDs)), zap.Int("tokenCount", len(tokens)))
	return tokens, nil
}
