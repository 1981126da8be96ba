// Package store provides the persistence layer. Lifecycle components receive
// these interfaces so they never reach into collections directly.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"food-rescue-api-server/internal/models"
)

var (
	// ErrNotFound is returned when the referenced document does not exist.
	ErrNotFound = errors.New("store: document not found")
	// ErrDuplicate is returned when a unique index rejects an insert.
	ErrDuplicate = errors.New("store: duplicate document")
	// ErrNoMatch is returned by guarded updates when the document exists but
	// no longer satisfies the guard (lost race or stale state).
	ErrNoMatch = errors.New("store: no document matched the guard")
)

// UserFilter selects users for listing.
type UserFilter struct {
	Role      string
	City      string
	Available *bool
}

// DonationFilter selects donations for listing.
type DonationFilter struct {
	Donor         *primitive.ObjectID
	Status        string
	Unassigned    bool
	HasAcceptedBy bool
}

// RequestFilter selects requests for listing.
type RequestFilter struct {
	NGO      *primitive.ObjectID
	Donation *primitive.ObjectID
	Status   string
}

// AssignmentFilter selects assignments for listing.
type AssignmentFilter struct {
	Volunteer *primitive.ObjectID
	Donation  *primitive.ObjectID
	Status    string
}

// UserStore - user collection operations
type UserStore interface {
	InsertUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context, f UserFilter) ([]models.User, error)
}

// DonationStore - donation collection operations. The three guarded writes
// (MarkDonationAccepted, AcceptDonationDirect, AssignDonation) are
// compare-and-swap updates so concurrent claimants lose with ErrNoMatch
// instead of double-writing.
type DonationStore interface {
	InsertDonation(ctx context.Context, d *models.Donation) error
	GetDonation(ctx context.Context, id primitive.ObjectID) (*models.Donation, error)
	UpdateDonation(ctx context.Context, d *models.Donation) error
	DeleteDonation(ctx context.Context, id primitive.ObjectID) error
	ListDonations(ctx context.Context, f DonationFilter) ([]models.Donation, error)

	// MarkDonationAccepted moves pending -> accepted on behalf of an NGO.
	MarkDonationAccepted(ctx context.Context, id, ngoID primitive.ObjectID) (*models.Donation, error)
	// AcceptDonationDirect moves pending -> accepted with the actor as assignee
	// (the direct NGO/volunteer acceptance path).
	AcceptDonationDirect(ctx context.Context, id, actorID primitive.ObjectID) (*models.Donation, error)
	// AssignDonation sets the volunteer and moves the donation to "assigned",
	// provided its status is one of fromStatuses and no volunteer holds it.
	AssignDonation(ctx context.Context, id, volunteerID primitive.ObjectID, fromStatuses []string) (*models.Donation, error)
}

// RequestStore - request collection operations
type RequestStore interface {
	InsertRequest(ctx context.Context, r *models.Request) error
	GetRequest(ctx context.Context, id primitive.ObjectID) (*models.Request, error)
	UpdateRequest(ctx context.Context, r *models.Request) error
	DeleteRequest(ctx context.Context, id primitive.ObjectID) error
	ListRequests(ctx context.Context, f RequestFilter) ([]models.Request, error)
	FindRequestByDonationAndNGO(ctx context.Context, donationID, ngoID primitive.ObjectID) (*models.Request, error)
}

// AssignmentStore - assignment collection operations
type AssignmentStore interface {
	InsertAssignment(ctx context.Context, a *models.Assignment) error
	GetAssignment(ctx context.Context, id primitive.ObjectID) (*models.Assignment, error)
	UpdateAssignment(ctx context.Context, a *models.Assignment) error
	ListAssignments(ctx context.Context, f AssignmentFilter) ([]models.Assignment, error)
	// FindActiveAssignment returns the assignment currently claiming the
	// donation (status pending/accepted/in_transit), or ErrNotFound.
	FindActiveAssignment(ctx context.Context, donationID primitive.ObjectID) (*models.Assignment, error)
}

// NotificationStore - notification collection operations
type NotificationStore interface {
	InsertNotification(ctx context.Context, n *models.Notification) error
	GetNotification(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	ListNotifications(ctx context.Context, recipient primitive.ObjectID, limit int64) ([]models.Notification, error)
	CountUnreadNotifications(ctx context.Context, recipient primitive.ObjectID) (int64, error)
	MarkNotificationRead(ctx context.Context, id primitive.ObjectID) error
	MarkAllNotificationsRead(ctx context.Context, recipient primitive.ObjectID) error
}

// Store - interface for all persistence operations
type Store interface {
	UserStore
	DonationStore
	RequestStore
	AssignmentStore
	NotificationStore
}
