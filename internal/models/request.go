package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request statuses. "cancelled" and "delivered" are terminal.
const (
	RequestStatusPending   = "pending"
	RequestStatusAccepted  = "accepted"
	RequestStatusAssigned  = "assigned"
	RequestStatusPickedUp  = "picked_up"
	RequestStatusDelivered = "delivered"
	RequestStatusCancelled = "cancelled"
)

// Request is one NGO's claim on one donation. At most one request exists per
// (donation, ngo) pair, enforced by a unique index.
type Request struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Donation primitive.ObjectID `bson:"donation" json:"donation"`
	NGO      primitive.ObjectID `bson:"ngo" json:"ngo"`

	Volunteer  *primitive.ObjectID `bson:"volunteer,omitempty" json:"volunteer,omitempty"`
	Assignment *primitive.ObjectID `bson:"assignment,omitempty" json:"assignment,omitempty"`

	Status string `bson:"status" json:"status"`

	RequestedAt time.Time  `bson:"requestedAt" json:"requestedAt"`
	AcceptedAt  *time.Time `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	AssignedAt  *time.Time `bson:"assignedAt,omitempty" json:"assignedAt,omitempty"`
	PickedUpAt  *time.Time `bson:"pickedUpAt,omitempty" json:"pickedUpAt,omitempty"`
	DeliveredAt *time.Time `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CancelledAt *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`

	CancellationReason string `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	Notes              string `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Terminal reports whether the request can no longer be mutated.
func (r *Request) Terminal() bool {
	return r.Status == RequestStatusDelivered || r.Status == RequestStatusCancelled
}
