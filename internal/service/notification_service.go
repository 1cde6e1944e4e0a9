package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// NotificationService forwards persisted ticket events to an external
// ticketing system. At-least-once, no retries: a failed forward is logged
// and dropped, the event in the store remains the source of truth.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to the ticket event types worth forwarding.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(domain.EventTicketCreated, n.forward)
	n.dispatcher.Subscribe(domain.EventTicketUpdated, n.forward)
	n.dispatcher.Subscribe(domain.EventCommentAdded, n.forward)
	n.dispatcher.Subscribe(domain.EventTicketEscalated, n.forward)
}

func (n *NotificationService) forward(_ context.Context, event domain.Event) error {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return nil
	}

	agent := fiber.Post(n.cfg.WebhookURL)
	if n.cfg.TimeoutSeconds > 0 {
		agent.Timeout(time.Duration(n.cfg.TimeoutSeconds) * time.Second)
	}
	agent.JSON(event)

	code, _, errs := agent.Bytes()
	if len(errs) > 0 {
		n.logger.Warn("webhook forward failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Errors("errors", errs))
		return errs[0]
	}
	if code >= 400 {
		n.logger.Warn("webhook forward rejected",
			zap.String("event_type", string(event.Type)),
			zap.Int("status", code))
		return fmt.Errorf("webhook returned status %d", code)
	}

	n.logger.Debug("event forwarded",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID))
	return nil
}
