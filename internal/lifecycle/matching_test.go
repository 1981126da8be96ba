package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"food-rescue-api-server/internal/models"
)

func TestCityMatches(t *testing.T) {
	assert.True(t, cityMatches("Bengaluru", "Bengaluru"))
	assert.True(t, cityMatches("new delhi", "New Delhi"), "comparison ignores case and spaces")
	assert.True(t, cityMatches("", "Bengaluru"), "empty volunteer city disables the filter")
	assert.True(t, cityMatches("Bengaluru", ""), "empty donation city disables the filter")
	assert.False(t, cityMatches("Bengaluru", "Mumbai"))
}

func TestDonationCityFallsBackToDonor(t *testing.T) {
	donor := &models.User{City: "Mumbai"}

	assert.Equal(t, "Pune", donationCity(&models.Donation{City: "Pune"}, donor))
	assert.Equal(t, "Mumbai", donationCity(&models.Donation{}, donor))
	assert.Equal(t, "", donationCity(&models.Donation{}, nil))
}

func TestWithinCapacity(t *testing.T) {
	volunteer := &models.User{VolunteerProfile: &models.VolunteerProfile{MaxWeight: 20}}

	assert.True(t, withinCapacity(volunteer, &models.Donation{Quantity: 20, Unit: "kg"}))
	assert.False(t, withinCapacity(volunteer, &models.Donation{Quantity: 25, Unit: "kg"}))
	assert.True(t, withinCapacity(volunteer, &models.Donation{Quantity: 500, Unit: "servings"}),
		"capacity only constrains donations measured in kg")

	unconstrained := &models.User{}
	assert.True(t, withinCapacity(unconstrained, &models.Donation{Quantity: 500, Unit: "kg"}),
		"volunteers without a profile are unconstrained")
}

func TestAvailableOn(t *testing.T) {
	now := time.Now()
	today := weekdayKey(now)

	active := &models.User{VolunteerProfile: &models.VolunteerProfile{
		AvailabilitySchedule: map[string]models.DayAvailability{today: {Active: true}},
	}}
	inactive := &models.User{VolunteerProfile: &models.VolunteerProfile{
		AvailabilitySchedule: map[string]models.DayAvailability{today: {Active: false}},
	}}

	assert.True(t, availableOn(active, now))
	assert.False(t, availableOn(inactive, now))
	assert.True(t, availableOn(&models.User{}, now), "missing profile counts as available")
	assert.True(t, availableOn(&models.User{VolunteerProfile: &models.VolunteerProfile{
		AvailabilitySchedule: map[string]models.DayAvailability{},
	}}, now), "missing weekday entry counts as available")
}

func TestWeekdayKey(t *testing.T) {
	// 2026-01-04 is a Sunday.
	sunday := time.Date(2026, 1, 4, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "sun", weekdayKey(sunday))
	assert.Equal(t, "mon", weekdayKey(sunday.Add(24*time.Hour)))
	assert.Equal(t, "sat", weekdayKey(sunday.Add(6*24*time.Hour)))
}
