package handler

import (
	"context"
	"errors"
	"net/http"

	"hub-notifier/internal/config"
	"hub-notifier/internal/domain"
	"hub-notifier/internal/service"
	"hub-notifier/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Notifier - поток уведомления, который вызывает HTTP-слой.
type Notifier interface {
	Notify(ctx context.Context, req service.NotifyRequest) (*service.NotifyResult, error)
}

type HTTPHandler struct {
	notifier Notifier
	verifier middleware.TokenVerifier
	logger   *zap.Logger
}

func NewHTTPHandler(notifier Notifier, verifier middleware.TokenVerifier, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		notifier: notifier,
		verifier: verifier,
		logger:   logger.Named("http_handler"),
	}
}

// RegisterRoutes регистрирует /health и защищенные POST /notify и POST /.
func (h *HTTPHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", h.health)

	authed := router.Group("")
	authed.Use(middleware.GinAuth(h.verifier, h.logger))
	{
		authed.POST("/notify", h.notify)
		// Корень функции - адрес, который уже зашит в мобильный клиент.
		authed.POST("/", h.notify)
	}
}

type deliveryResponse struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

type notifyResponse struct {
	Success  bool              `json:"success"`
	Delivery *deliveryResponse `json:"delivery,omitempty"`
	Queued   *bool             `json:"queued,omitempty"`
}

func (h *HTTPHandler) notify(c *gin.Context) {
	userID := middleware.GetUserID(c)
	requestID := middleware.GetRequestID(c)
	log := h.logger.With(zap.String("userID", userID), zap.String("requestID", requestID))

	var ev domain.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		log.Warn("Invalid request body", zap.Error(err))
		c.String(http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.notifier.Notify(c.Request.Context(), service.NotifyRequest{
		RequestID: requestID,
		UserID:    userID,
		Event:     ev,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, buildNotifyResponse(res.Outcome))
}

func buildNotifyResponse(out service.Outcome) notifyResponse {
	resp := notifyResponse{Success: true}
	switch out.Mode {
	case config.DispatchQueue:
		queued := out.Queued
		resp.Queued = &queued
	default:
		resp.Delivery = &deliveryResponse{}
		if out.Delivery != nil {
			resp.Delivery = &deliveryResponse{
				Attempted: out.Delivery.Attempted,
				Succeeded: out.Delivery.Succeeded,
				Failed:    out.Delivery.Failed,
				Skipped:   out.Delivery.Skipped,
			}
		}
	}
	return resp
}

func (h *HTTPHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleServiceError переводит ошибки сервиса в коды ответа. Тела - текст, как ждет клиент.
func (h *HTTPHandler) handleServiceError(c *gin.Context, err error) {
	var status int
	var message string

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, domain.ErrMembershipNotFound):
		status, message = http.StatusBadRequest, "Sender not found in any hub"
	case errors.Is(err, domain.ErrInvalidEvent):
		status, message = http.StatusBadRequest, "Invalid function name"
	case errors.Is(err, domain.ErrInvalidParams):
		status, message = http.StatusBadRequest, err.Error()
	default:
		status, message = http.StatusInternalServerError, err.Error()
		var dataErr *domain.DataLayerError
		if errors.As(err, &dataErr) {
			message = dataErr.Err.Error()
		}
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Internal error while handling notification", zap.Error(err))
	} else {
		h.logger.Warn("Notification request rejected", zap.Int("status", status), zap.Error(err))
	}
	c.String(status, message)
}
