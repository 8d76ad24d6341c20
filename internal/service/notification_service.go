package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/cloudblitz/enquiry-service/internal/config"
	"github.com/cloudblitz/enquiry-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
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

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventEnquiryCreated, n.handleEnquiryCreated)
	n.dispatcher.Subscribe(events.EventEnquiryAssigned, n.handleEnquiryAssigned)
	n.dispatcher.Subscribe(events.EventEnquiryStatusChanged, n.handleEnquiryStatusChanged)
	n.dispatcher.Subscribe(events.EventEnquiryDeleted, n.handleEnquiryDeleted)
	n.dispatcher.Subscribe(events.EventUserCreated, n.handleUserCreated)
}

func (n *NotificationService) handleEnquiryCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("EnquiryCreated", zap.String("enquiry_id", event.EnquiryID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleEnquiryAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("EnquiryAssigned", zap.String("enquiry_id", event.EnquiryID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleEnquiryStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("EnquiryStatusChanged", zap.String("enquiry_id", event.EnquiryID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleEnquiryDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("EnquiryDeleted", zap.String("enquiry_id", event.EnquiryID))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleUserCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("UserCreated", zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
