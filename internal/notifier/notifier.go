// Package notifier persists notifications and pushes them to connected
// clients. Every path is best-effort: lifecycle transitions must never fail
// because a notification could not be stored or delivered.
package notifier

import (
	"context"
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"food-rescue-api-server/internal/models"
	"food-rescue-api-server/internal/socket"
	"food-rescue-api-server/internal/store"
)

type Service struct {
	store store.NotificationStore
	hub   *socket.Hub
	log   *zap.Logger
}

func New(store store.NotificationStore, hub *socket.Hub, log *zap.Logger) *Service {
	return &Service{store: store, hub: hub, log: log}
}

// Notify stores the notification and pushes it over the websocket hub.
// Failures are logged and swallowed.
func (s *Service) Notify(ctx context.Context, recipient primitive.ObjectID, title, message, notificationType string, data map[string]interface{}) {
	n := &models.Notification{
		Recipient: recipient,
		Title:     title,
		Message:   message,
		Type:      notificationType,
		Data:      data,
	}
	if err := s.store.InsertNotification(ctx, n); err != nil {
		s.log.Error("failed to store notification",
			zap.String("recipient", recipient.Hex()), zap.Error(err))
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		s.log.Error("failed to encode notification", zap.Error(err))
		return
	}
	if err := s.hub.Send(recipient.Hex(), payload); err != nil {
		s.log.Warn("failed to push notification",
			zap.String("recipient", recipient.Hex()), zap.Error(err))
	}
}
