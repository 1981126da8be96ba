package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleDonor     = "donor"
	RoleNGO       = "ngo"
	RoleVolunteer = "volunteer"
)

// AvailabilitySlot is a start/end time-of-day window ("09:00" - "17:00").
type AvailabilitySlot struct {
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

// DayAvailability is a volunteer's availability for one weekday.
type DayAvailability struct {
	Active bool               `bson:"active" json:"active"`
	Slots  []AvailabilitySlot `bson:"slots,omitempty" json:"slots,omitempty"`
}

// VolunteerProfile carries the volunteer-specific fields used by the matching filter.
// AvailabilitySchedule is keyed by lowercase three-letter weekday ("mon" ... "sun").
type VolunteerProfile struct {
	VehicleType          string                     `bson:"vehicleType,omitempty" json:"vehicleType,omitempty"`
	MaxWeight            float64                    `bson:"maxWeight,omitempty" json:"maxWeight,omitempty"`
	ServiceRadius        float64                    `bson:"serviceRadius,omitempty" json:"serviceRadius,omitempty"`
	PreferredAreas       []string                   `bson:"preferredAreas,omitempty" json:"preferredAreas,omitempty"`
	AvailabilitySchedule map[string]DayAvailability `bson:"availabilitySchedule,omitempty" json:"availabilitySchedule,omitempty"`
}

// User matches the documents in the "users" collection. Organization fields
// are only set for donor/ngo accounts, VolunteerProfile only for volunteers.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
	FullName string             `bson:"fullName" json:"fullName"`
	Phone    string             `bson:"phone" json:"phone"`
	Role     string             `bson:"role" json:"role"`

	OrganizationName string `bson:"organizationName,omitempty" json:"organizationName,omitempty"`
	OrganizationType string `bson:"organizationType,omitempty" json:"organizationType,omitempty"`

	// NGO fields
	RegistrationNumber string `bson:"registrationNumber,omitempty" json:"registrationNumber,omitempty"`
	DailyCapacity      int    `bson:"dailyCapacity,omitempty" json:"dailyCapacity,omitempty"`

	Address  string    `bson:"address" json:"address"`
	City     string    `bson:"city" json:"city"`
	State    string    `bson:"state" json:"state"`
	Pincode  string    `bson:"pincode" json:"pincode"`
	Location *GeoPoint `bson:"location,omitempty" json:"location,omitempty"`

	// Volunteer fields
	IsAvailable      bool              `bson:"isAvailable" json:"isAvailable"`
	VolunteerProfile *VolunteerProfile `bson:"volunteerProfile,omitempty" json:"volunteerProfile,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
