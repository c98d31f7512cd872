package service

import (
	"context"
	"errors"
	"fmt"

	"hub-notifier/internal/domain"
	"hub-notifier/internal/events"
	"hub-notifier/internal/messaging"

	"go.uber.org/zap"
)

// MembershipReader - чтения hub_members, нужные сервису.
type MembershipReader interface {
	MembershipByUserID(ctx context.Context, userID string) (*domain.Membership, error)
	HubMemberIDs(ctx context.Context, hubID string) ([]string, error)
	HubMemberIDsExcept(ctx context.Context, hubID, userID string) ([]string, error)
}

// DeviceReader - чтение токенов устройств.
type DeviceReader interface {
	TokensByUserIDs(ctx context.Context, userIDs []string) ([]string, error)
}

// EventRouter собирает сообщение и выбор получателей по событию.
type EventRouter interface {
	Route(ctx context.Context, sender events.Sender, ev domain.Event) (events.Composition, error)
}

// NotifyRequest - аутентифицированный запрос на уведомление.
type NotifyRequest struct {
	RequestID string
	UserID    string
	Event     domain.Event
}

// NotifyResult - что произошло с запросом после успешной маршрутизации.
type NotifyResult struct {
	Recipients int
	Tokens     int
	Outcome    Outcome
}

type NotifyService struct {
	members    MembershipReader
	devices    DeviceReader
	router     EventRouter
	dispatcher Dispatcher
	logger     *zap.Logger
}

func NewNotifyService(members MembershipReader, devices DeviceReader, router EventRouter, dispatcher Dispatcher, logger *zap.Logger) *NotifyService {
	return &NotifyService{
		members:    members,
		devices:    devices,
		router:     router,
		dispatcher: dispatcher,
		logger:     logger.Named("notify_service"),
	}
}

// Notify выполняет весь поток: отправитель -> получатели по умолчанию -> событие ->
// токены -> доставка. Ошибки до доставки возвращаются, ошибки доставки - нет.
func (s *NotifyService) Notify(ctx context.Context, req NotifyRequest) (*NotifyResult, error) {
	log := s.logger.With(
		zap.String("requestID", req.RequestID),
		zap.String("userID", req.UserID),
		zap.String("function_name", req.Event.Name),
	)

	membership, err := s.members.MembershipByUserID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn("Could not find sender's membership info")
			return nil, domain.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to get sender membership: %w", err)
	}
	log = log.With(zap.String("hubID", membership.HubID))

	others, err := s.members.HubMemberIDsExcept(ctx, membership.HubID, req.UserID)
	if err != nil {
		log.Error("Error fetching hub members", zap.Error(err))
		return nil, err
	}
	log.Debug("Fetched hub members", zap.Int("count", len(others)))

	comp, err := s.router.Route(ctx, events.Sender{
		UserID:      req.UserID,
		HubID:       membership.HubID,
		DisplayName: membership.DisplayName,
	}, req.Event)
	if err != nil {
		return nil, err
	}

	recipients, err := s.resolveRecipients(ctx, comp.Recipients, membership.HubID, others)
	if err != nil {
		log.Error("Error resolving recipients", zap.Error(err))
		return nil, err
	}

	tokens := []string{}
	if len(recipients) > 0 {
		tokens, err = s.devices.TokensByUserIDs(ctx, recipients)
		if err != nil {
			log.Error("Error fetching device tokens", zap.Error(err))
			return nil, err
		}
	}

	result := &NotifyResult{Recipients: len(recipients), Tokens: len(tokens)}
	log.Info("Tokens to send notification",
		zap.Stringer("recipientMode", comp.Recipients.Mode),
		zap.Int("recipients", len(recipients)),
		zap.Int("tokens", len(tokens)),
	)

	if len(tokens) == 0 {
		result.Outcome = Outcome{Mode: s.dispatcher.Mode()}
		return result, nil
	}

	result.Outcome = s.dispatcher.Dispatch(ctx, messaging.PushJob{
		RequestID:    req.RequestID,
		EventType:    req.Event.Name,
		Tokens:       tokens,
		Notification: comp.Notification,
	})
	return result, nil
}

func (s *NotifyService) resolveRecipients(ctx context.Context, r domain.Recipients, hubID string, others []string) ([]string, error) {
	switch r.Mode {
	case domain.RecipientsSingle:
		if r.UserID == "" {
			return nil, nil
		}
		return []string{r.UserID}, nil
	case domain.RecipientsEntireHub:
		return s.members.HubMemberIDs(ctx, hubID)
	default:
		return others, nil
	}
}
