package lifecycle

import (
	"strings"
	"time"

	"food-rescue-api-server/internal/models"
)

var weekdayKeys = [...]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// weekdayKey returns the schedule key ("mon" ... "sun") for a point in time.
func weekdayKey(t time.Time) string {
	return weekdayKeys[int(t.Weekday())]
}

func normalizeCity(city string) string {
	return strings.ToLower(strings.ReplaceAll(city, " ", ""))
}

// cityMatches compares cities case- and space-insensitively. An empty city on
// either side disables the filter.
func cityMatches(volunteerCity, donationCity string) bool {
	if volunteerCity == "" || donationCity == "" {
		return true
	}
	return normalizeCity(volunteerCity) == normalizeCity(donationCity)
}

// donationCity returns the donation's city, falling back to the donor's.
func donationCity(d *models.Donation, donor *models.User) string {
	if d.City != "" {
		return d.City
	}
	if donor != nil {
		return donor.City
	}
	return ""
}

// withinCapacity checks the weight rule: a donation measured in kg must not
// exceed the volunteer's declared carrying capacity. Volunteers without a
// positive MaxWeight are unconstrained, as are donations in other units.
func withinCapacity(volunteer *models.User, d *models.Donation) bool {
	if d.Unit != "kg" {
		return true
	}
	profile := volunteer.VolunteerProfile
	if profile == nil || profile.MaxWeight <= 0 {
		return true
	}
	return profile.MaxWeight >= d.Quantity
}

// availableOn checks the volunteer's schedule for the weekday of t. A missing
// profile, schedule, or weekday entry counts as available.
func availableOn(volunteer *models.User, t time.Time) bool {
	profile := volunteer.VolunteerProfile
	if profile == nil || profile.AvailabilitySchedule == nil {
		return true
	}
	day, ok := profile.AvailabilitySchedule[weekdayKey(t)]
	if !ok {
		return true
	}
	return day.Active
}
