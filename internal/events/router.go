package events

import (
	"context"
	"errors"
	"fmt"

	"hub-notifier/internal/domain"

	"go.uber.org/zap"
)

// Имена событий, которые присылает мобильное приложение.
const (
	EventNewProject        = "notify_new_project"
	EventNewBug            = "notify_new_bug"
	EventBugUpdate         = "notify_bug_update"
	EventNewChatMessage    = "notify_new_chat_message"
	EventProjectUpdate     = "notify_project_update"
	EventTestBroadcast     = "notify_test_broadcast"
	EventPermissionsUpdate = "notify_permissions_update"
	EventMemberRemoved     = "notify_member_removed"
	EventBroadcast         = "notify_broadcast"
)

// Ключи data payload.
const (
	DataEventType = "event_type"
	DataHubID     = "hub_id"
	DataProjectID = "project_id"
	DataBugID     = "bug_id"
	DataMemberID  = "member_id"
	DataBugStatus = "status"
)

// Lookup - чтения, нужные роутеру. domain.ErrNotFound означает отсутствие записи.
type Lookup interface {
	ProjectByID(ctx context.Context, id string) (*domain.Project, error)
	BugByID(ctx context.Context, id string) (*domain.Bug, error)
	MembershipByID(ctx context.Context, id string) (*domain.Membership, error)
}

// Sender - отправитель события в контексте его хаба.
type Sender struct {
	UserID      string
	HubID       string
	DisplayName *string
}

// Composition - результат маршрутизации: сообщение и выбор получателей.
type Composition struct {
	Notification domain.Notification
	Recipients   domain.Recipients
}

type request struct {
	event      string
	sender     Sender
	senderName string
	params     params
	msg        Catalog
}

type builder func(ctx context.Context, r *Router, req request) (Composition, error)

// Таблица маршрутов. Одно имя - один обработчик: notify_test_broadcast ведет
// на тестовое сообщение, notify_broadcast - на рассылку всему хабу.
var routes = map[string]builder{
	EventNewProject:        buildNewProject,
	EventNewBug:            buildNewBug,
	EventBugUpdate:         buildBugUpdate,
	EventNewChatMessage:    buildNewChatMessage,
	EventProjectUpdate:     buildProjectUpdate,
	EventTestBroadcast:     buildTestBroadcast,
	EventPermissionsUpdate: buildPermissionsUpdate,
	EventMemberRemoved:     buildMemberRemoved,
	EventBroadcast:         buildBroadcast,
}

// Known сообщает, есть ли маршрут для события.
func Known(event string) bool {
	_, ok := routes[event]
	return ok
}

// Router превращает событие в Composition.
type Router struct {
	lookup        Lookup
	defaultLocale string
	logger        *zap.Logger
}

func NewRouter(lookup Lookup, defaultLocale string, logger *zap.Logger) *Router {
	if !SupportedLocale(defaultLocale) {
		logger.Warn("Unsupported default locale, falling back", zap.String("locale", defaultLocale), zap.String("fallback", DefaultLocale))
		defaultLocale = DefaultLocale
	}
	return &Router{
		lookup:        lookup,
		defaultLocale: defaultLocale,
		logger:        logger.Named("event_router"),
	}
}

// Route находит обработчик события и собирает сообщение.
// Неизвестное имя - domain.ErrInvalidEvent, некорректные параметры - domain.ErrInvalidParams.
func (r *Router) Route(ctx context.Context, sender Sender, ev domain.Event) (Composition, error) {
	build, ok := routes[ev.Name]
	if !ok {
		r.logger.Warn("Unknown event", zap.String("function_name", ev.Name))
		return Composition{}, domain.ErrInvalidEvent
	}

	p, err := decodeParams(ev.Params)
	if err != nil {
		return Composition{}, err
	}

	msg := catalogFor(ev.Locale, r.defaultLocale)
	senderName := msg.Someone
	if sender.DisplayName != nil {
		senderName = *sender.DisplayName
	}

	comp, err := build(ctx, r, request{
		event:      ev.Name,
		sender:     sender,
		senderName: senderName,
		params:     p,
		msg:        msg,
	})
	if err != nil {
		return Composition{}, err
	}

	comp.Notification.Data = withBaseData(comp.Notification.Data, ev.Name, sender.HubID)
	r.logger.Debug("Event routed",
		zap.String("function_name", ev.Name),
		zap.String("hubID", sender.HubID),
		zap.Stringer("recipients", comp.Recipients.Mode),
	)
	return comp, nil
}

func withBaseData(data map[string]string, event, hubID string) map[string]string {
	if data == nil {
		data = make(map[string]string, 2)
	}
	data[DataEventType] = event
	data[DataHubID] = hubID
	return data
}

// projectName возвращает имя проекта или пустую строку, если проекта нет.
func (r *Router) projectName(ctx context.Context, id string) (string, error) {
	project, err := r.lookup.ProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Info("Project not found, rendering empty name", zap.String("projectID", id))
			return "", nil
		}
		return "", fmt.Errorf("failed to get project %s: %w", id, err)
	}
	return project.Name, nil
}

// bugWithProject возвращает баг (пустой, если нет) и имя его проекта.
func (r *Router) bugWithProject(ctx context.Context, id string) (domain.Bug, string, error) {
	bug, err := r.lookup.BugByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Info("Bug not found, rendering empty fields", zap.String("bugID", id))
			return domain.Bug{}, "", nil
		}
		return domain.Bug{}, "", fmt.Errorf("failed to get bug %s: %w", id, err)
	}
	name, err := r.projectName(ctx, bug.ProjectID)
	if err != nil {
		return domain.Bug{}, "", err
	}
	return *bug, name, nil
}

// targetUser возвращает user_id участника хаба hubID по id строки hub_members.
// Участник другого хаба считается отсутствующим: "" и никто не уведомляется.
func (r *Router) targetUser(ctx context.Context, hubID, memberID string) (string, error) {
	member, err := r.lookup.MembershipByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Info("Target member not found, nobody will be notified", zap.String("memberID", memberID))
			return "", nil
		}
		return "", fmt.Errorf("failed to get member %s: %w", memberID, err)
	}
	if member.HubID != hubID {
		r.logger.Warn("Target member belongs to another hub, nobody will be notified",
			zap.String("memberID", memberID),
			zap.String("hubID", hubID),
		)
		return "", nil
	}
	return member.UserID, nil
}
