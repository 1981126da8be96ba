package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assignment statuses. "completed" and "cancelled" are terminal.
const (
	AssignmentStatusPending   = "pending"
	AssignmentStatusAccepted  = "accepted"
	AssignmentStatusInTransit = "in_transit"
	AssignmentStatusCompleted = "completed"
	AssignmentStatusCancelled = "cancelled"
)

// ActiveAssignmentStatuses are the statuses that count against the
// one-active-assignment-per-donation invariant.
var ActiveAssignmentStatuses = []string{
	AssignmentStatusPending,
	AssignmentStatusAccepted,
	AssignmentStatusInTransit,
}

// Assignment is one volunteer's pickup/delivery task for one donation. The
// donor reference is denormalized so volunteer views don't need a donation
// lookup.
type Assignment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Donation  primitive.ObjectID `bson:"donation" json:"donation"`
	Volunteer primitive.ObjectID `bson:"volunteer" json:"volunteer"`
	Donor     primitive.ObjectID `bson:"donor" json:"donor"`

	Status string `bson:"status" json:"status"`

	CurrentLocation *TransitLocation `bson:"currentLocation,omitempty" json:"currentLocation,omitempty"`

	AssignedAt  time.Time  `bson:"assignedAt" json:"assignedAt"`
	AcceptedAt  *time.Time `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	StartedAt   *time.Time `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`

	CompletionNotes    string `bson:"completionNotes,omitempty" json:"completionNotes,omitempty"`
	Rating             *int   `bson:"rating,omitempty" json:"rating,omitempty"`
	CancellationReason string `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Active reports whether the assignment still claims its donation.
func (a *Assignment) Active() bool {
	for _, s := range ActiveAssignmentStatuses {
		if a.Status == s {
			return true
		}
	}
	return false
}
