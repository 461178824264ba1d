package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-crm/internal/config"
	"github.com/spec-kit/support-crm/internal/events"
)

// NotificationService forwards domain events to operators: every event is
// logged, and when Redis is reachable the event is also published as JSON on
// a channel external consumers can subscribe to.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	redisCli   *redis.Client
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service. redisCli may be nil.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, redisCli *redis.Client, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		redisCli:   redisCli,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketPriorityChanged, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleEvent)
	n.dispatcher.Subscribe(events.EventCommunicationLogged, n.handleEvent)
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("domain event",
		zap.String("type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.String("actor_id", event.ActorID))
	n.publishToRedis(ctx, event)
	n.sendEmailStub(event)
	return nil
}

func (n *NotificationService) publishToRedis(ctx context.Context, event events.Event) {
	if n.redisCli == nil || strings.TrimSpace(n.cfg.EventChannel) == "" {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("marshal event", zap.Error(err))
		return
	}
	if err := n.redisCli.Publish(ctx, n.cfg.EventChannel, payload).Err(); err != nil {
		n.logger.Warn("publish event", zap.String("channel", n.cfg.EventChannel), zap.Error(err))
	}
}

func (n *NotificationService) sendEmailStub(event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
