package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Donation statuses. "expired" is derived from the expiry date/time at read
// time and is never written by a lifecycle transition.
const (
	DonationStatusPending   = "pending"
	DonationStatusAccepted  = "accepted"
	DonationStatusAssigned  = "assigned"
	DonationStatusInTransit = "in_transit"
	DonationStatusPickedUp  = "picked_up"
	DonationStatusDelivered = "delivered"
	DonationStatusCancelled = "cancelled"
	DonationStatusExpired   = "expired"
)

// Hygiene is the donor's declaration at creation time. All four flags must be
// true for a donation to be created.
type Hygiene struct {
	SafeHandling       bool `bson:"safeHandling" json:"safeHandling"`
	TemperatureControl bool `bson:"temperatureControl" json:"temperatureControl"`
	ProperPackaging    bool `bson:"properPackaging" json:"properPackaging"`
	NoContamination    bool `bson:"noContamination" json:"noContamination"`
}

// Declared reports whether every hygiene flag was confirmed.
func (h Hygiene) Declared() bool {
	return h.SafeHandling && h.TemperatureControl && h.ProperPackaging && h.NoContamination
}

// Donation matches the documents in the "donations" collection.
type Donation struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Donor primitive.ObjectID `bson:"donor" json:"donor"`

	// Food details
	FoodType          string   `bson:"foodType" json:"foodType"`
	FoodName          string   `bson:"foodName" json:"foodName"`
	Description       string   `bson:"description,omitempty" json:"description,omitempty"`
	Quantity          float64  `bson:"quantity" json:"quantity"`
	Unit              string   `bson:"unit" json:"unit"`
	EstimatedServings int      `bson:"estimatedServings" json:"estimatedServings"`
	DietaryTags       []string `bson:"dietaryTags,omitempty" json:"dietaryTags,omitempty"`
	FoodPhoto         string   `bson:"foodPhoto,omitempty" json:"foodPhoto,omitempty"`

	// Safety window. Dates are "2006-01-02", times "15:04", kept as strings
	// to match what the clients submit.
	PreparationDate  string   `bson:"preparationDate" json:"preparationDate"`
	PreparationTime  string   `bson:"preparationTime" json:"preparationTime"`
	ExpiryDate       string   `bson:"expiryDate" json:"expiryDate"`
	ExpiryTime       string   `bson:"expiryTime" json:"expiryTime"`
	StorageCondition string   `bson:"storageCondition" json:"storageCondition"`
	Allergens        []string `bson:"allergens,omitempty" json:"allergens,omitempty"`

	Hygiene Hygiene `bson:"hygiene" json:"hygiene"`

	// Pickup details
	PickupAddress      string    `bson:"pickupAddress" json:"pickupAddress"`
	City               string    `bson:"city" json:"city"`
	PickupDeadline     string    `bson:"pickupDeadline" json:"pickupDeadline"`
	PickupInstructions string    `bson:"pickupInstructions,omitempty" json:"pickupInstructions,omitempty"`
	Location           *GeoPoint `bson:"location,omitempty" json:"location,omitempty"`

	// Status tracking
	Status     string              `bson:"status" json:"status"`
	AcceptedBy *primitive.ObjectID `bson:"acceptedBy,omitempty" json:"acceptedBy,omitempty"`
	AssignedTo *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`

	AcceptedAt  *time.Time `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	PickedUpAt  *time.Time `bson:"pickedUpAt,omitempty" json:"pickedUpAt,omitempty"`
	DeliveredAt *time.Time `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CancelledAt *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ExpiresAt parses the expiry date and time into a single timestamp. ok is
// false when either field is missing or malformed.
func (d *Donation) ExpiresAt() (t time.Time, ok bool) {
	if d.ExpiryDate == "" || d.ExpiryTime == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02T15:04", d.ExpiryDate+"T"+d.ExpiryTime, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Expired reports whether the safety window has closed. A donation with no
// parseable expiry never expires.
func (d *Donation) Expired(now time.Time) bool {
	t, ok := d.ExpiresAt()
	if !ok {
		return false
	}
	return now.After(t)
}
