package lifecycle

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifier is the fire-and-forget side channel invoked by lifecycle
// transitions. Implementations must swallow their own failures; callers never
// check an error.
type Notifier interface {
	Notify(ctx context.Context, recipient primitive.ObjectID, title, message, notificationType string, data map[string]interface{})
}

// NopNotifier discards every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, primitive.ObjectID, string, string, string, map[string]interface{}) {
}
