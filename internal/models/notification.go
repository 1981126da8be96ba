package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotificationTypeNewAssignment    = "new_assignment"
	NotificationTypeAssignmentUpdate = "assignment_update"
	NotificationTypeStatusUpdate     = "status_update"
	NotificationTypeGeneral          = "general"
)

// Notification is a persisted in-app notification. Delivery over the
// websocket hub is best-effort on top of the stored record.
type Notification struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"_id"`
	Recipient primitive.ObjectID     `bson:"recipient" json:"recipient"`
	Title     string                 `bson:"title" json:"title"`
	Message   string                 `bson:"message" json:"message"`
	Type      string                 `bson:"type" json:"type"`
	Data      map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
	IsRead    bool                   `bson:"isRead" json:"isRead"`
	CreatedAt time.Time              `bson:"createdAt" json:"createdAt"`
}
