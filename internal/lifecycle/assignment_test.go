package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-rescue-api-server/internal/models"
)

func TestClaimAcceptedDonation(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	volunteer := f.seedUser(t, models.RoleVolunteer, "Bengaluru", &models.VolunteerProfile{MaxWeight: 50})
	ctx := context.Background()

	d, request := f.acceptedDonation(t, donor.ID, ngo.ID)

	assignment, err := f.assignments.Claim(ctx, d.ID, volunteer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusAccepted, assignment.Status, "self-claimed assignments skip the pending step")
	assert.NotNil(t, assignment.AcceptedAt)

	donation, err := f.store.GetDonation(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DonationStatusAssigned, donation.Status)
	require.NotNil(t, donation.AssignedTo)
	assert.Equal(t, volunteer.ID, *donation.AssignedTo)

	mirrored, err := f.store.GetRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAssigned, mirrored.Status)
}

func TestClaimRequiresUnassignedAcceptedDonation(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	first := f.seedUser(t, models.RoleVolunteer, "Bengaluru", nil)
	second := f.seedUser(t, models.RoleVolunteer, "Bengaluru", nil)
	ctx := context.Background()

	pending := f.seedDonation(t, donor.ID)
	var conflictErr *ConflictError
	_, err := f.assignments.Claim(ctx, pending.ID, first.ID)
	assert.ErrorAs(t, err, &conflictErr, "a pending donation cannot be claimed")

	d, _ := f.acceptedDonation(t, donor.ID, ngo.ID)
	_, err = f.assignments.Claim(ctx, d.ID, first.ID)
	require.NoError(t, err)

	_, err = f.assignments.Claim(ctx, d.ID, second.ID)
	assert.ErrorAs(t, err, &conflictErr, "the second claimant loses")
}

func TestCreateAssignmentEnforcesOneActive(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	first := f.seedUser(t, models.RoleVolunteer, "Bengaluru", nil)
	second := f.seedUser(t, models.RoleVolunteer, "Bengaluru", nil)
	ctx := context.Background()

	d, _ := f.acceptedDonation(t, donor.ID, ngo.ID)

	assignment, err := f.assignments.Create(ctx, d.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusPending, assignment.Status)

	_, err = f.assignments.Create(ctx, d.ID, second.ID)
	var conflictErr *ConflictError
	assert.ErrorAs(t, err, &conflictErr, "a donation carries at most one active assignment")
}

func TestCreateAssignmentValidatesVolunteer(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	notVolunteer := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ctx := context.Background()

	d, _ := f.acceptedDonation(t, donor.ID, ngo.ID)

	_, err := f.assignments.Create(ctx, d.ID, notVolunteer.ID)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestAcceptAssignmentOwnership(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	volunteer := f.seedUser(t, models.RoleVolunteer, "Bengaluru", nil)
	stranger := f.seedUser(t, models.RoleVolunteer, "Bengaluru", nil)
	ctx := context.Background()

	d, _ := f.acceptedDonation(t, donor.ID, ngo.ID)
	assignment, err := f.assignments.Create(ctx, d.ID, volunteer.ID)
	require.NoError(t, err)

	_, err = f.assignments.Accept(ctx, assignment.ID, stranger.ID)
	var forbiddenErr *ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)

	accepted, err := f.assignments.Accept(ctx, assignment.ID, volunteer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusAccepted, accepted.Status)

	_, err = f.assignments.Accept(ctx, assignment.ID, volunteer.ID)
	var conflictErr *ConflictError
	assert.ErrorAs(t, err, &conflictErr, "accept is not repeatable")
}

func TestFirstLocationPingStartsTransit(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	volunteer := f.seedUser(t, models.RoleVolunteer, "Bengaluru", nil)
	ctx := context.Background()

	d, request := f.acceptedDonation(t, donor.ID, ngo.ID)
	assignment, err := f.assignments.Claim(ctx, d.ID, volunteer.ID)
	require.NoError(t, err)

	assignment, err = f.assignments.UpdateLocation(ctx, assignment.ID, volunteer.ID, 12.97, 77.59)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusInTransit, assignment.Status)
	require.NotNil(t, assignment.StartedAt)
	firstStart := *assignment.StartedAt
	require.NotNil(t, assignment.CurrentLocation)
	assert.Equal(t, 12.97, assignment.CurrentLocation.Lat)

	donation, err := f.store.GetDonation(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DonationStatusInTransit, donation.Status)

	mirrored, err := f.store.GetRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPickedUp, mirrored.Status)

	// A second ping only moves the marker.
	assignment, err = f.assignments.UpdateLocation(ctx, assignment.ID, volunteer.ID, 12.98, 77.60)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusInTransit, assignment.Status)
	assert.Equal(t, firstStart, *assignment.StartedAt)
	assert.Equal(t, 12.98, assignment.CurrentLocation.Lat)
}

func TestCompleteCascadesDelivery(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	volunteer := f.seedUser(t, models.RoleVolunteer, "Bengaluru", nil)
	ctx := context.Background()

	d, request := f.acceptedDonation(t, donor.ID, ngo.ID)
	assignment, err := f.assignments.Claim(ctx, d.ID, volunteer.ID)
	require.NoError(t, err)
	_, err = f.assignments.UpdateLocation(ctx, assignment.ID, volunteer.ID, 12.97, 77.59)
	require.NoError(t, err)

	rating := 5
	completed, err := f.assignments.Complete(ctx, assignment.ID, volunteer.ID, "left at reception", &rating)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)
	assert.Equal(t, "left at reception", completed.CompletionNotes)

	donation, err := f.store.GetDonation(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DonationStatusDelivered, donation.Status)
	assert.NotNil(t, donation.DeliveredAt)

	mirrored, err := f.store.GetRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusDelivered, mirrored.Status)

	// Donor and NGO both hear about the delivery.
	recipients := map[string]bool{}
	for _, n := range f.notifier.sent {
		if n.Type == models.NotificationTypeStatusUpdate {
			recipients[n.Recipient.Hex()] = true
		}
	}
	assert.True(t, recipients[donor.ID.Hex()])
	assert.True(t, recipients[ngo.ID.Hex()])
}

func TestCompleteValidatesRating(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	volunteer := f.seedUser(t, models.RoleVolunteer, "Bengaluru", nil)
	ctx := context.Background()

	d, _ := f.acceptedDonation(t, donor.ID, ngo.ID)
	assignment, err := f.assignments.Claim(ctx, d.ID, volunteer.ID)
	require.NoError(t, err)

	rating := 6
	_, err = f.assignments.Complete(ctx, assignment.ID, volunteer.ID, "", &rating)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCancelAssignmentReleasesDonation(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	volunteer := f.seedUser(t, models.RoleVolunteer, "Bengaluru", nil)
	ctx := context.Background()

	d, _ := f.acceptedDonation(t, donor.ID, ngo.ID)
	assignment, err := f.assignments.Claim(ctx, d.ID, volunteer.ID)
	require.NoError(t, err)

	cancelled, err := f.assignments.Cancel(ctx, assignment.ID, volunteer.ID, models.RoleVolunteer, "vehicle broke down")
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusCancelled, cancelled.Status)

	donation, err := f.store.GetDonation(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DonationStatusAccepted, donation.Status, "the NGO acceptance survives the cancellation")
	assert.Nil(t, donation.AssignedTo)

	// The freed donation can be claimed again.
	second := f.seedUser(t, models.RoleVolunteer, "Bengaluru", nil)
	_, err = f.assignments.Claim(ctx, d.ID, second.ID)
	assert.NoError(t, err)
}

func TestCancelCompletedAssignmentRejected(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	volunteer := f.seedUser(t, models.RoleVolunteer, "Bengaluru", nil)
	ctx := context.Background()

	d, _ := f.acceptedDonation(t, donor.ID, ngo.ID)
	assignment, err := f.assignments.Claim(ctx, d.ID, volunteer.ID)
	require.NoError(t, err)
	_, err = f.assignments.Complete(ctx, assignment.ID, volunteer.ID, "", nil)
	require.NoError(t, err)

	_, err = f.assignments.Cancel(ctx, assignment.ID, volunteer.ID, models.RoleVolunteer, "")
	var conflictErr *ConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

func TestCancelAssignmentVolunteerOwnership(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	volunteer := f.seedUser(t, models.RoleVolunteer, "Bengaluru", nil)
	stranger := f.seedUser(t, models.RoleVolunteer, "Bengaluru", nil)
	ctx := context.Background()

	d, _ := f.acceptedDonation(t, donor.ID, ngo.ID)
	assignment, err := f.assignments.Claim(ctx, d.ID, volunteer.ID)
	require.NoError(t, err)

	_, err = f.assignments.Cancel(ctx, assignment.ID, stranger.ID, models.RoleVolunteer, "")
	var forbiddenErr *ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)

	// The accepting NGO may cancel on the volunteer's behalf.
	_, err = f.assignments.Cancel(ctx, assignment.ID, ngo.ID, models.RoleNGO, "volunteer unreachable")
	assert.NoError(t, err)
}

func TestAvailableFiltersForVolunteer(t *testing.T) {
	f := newFixture(t)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	localDonor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	remoteDonor := f.seedUser(t, models.RoleDonor, "Mumbai", nil)
	volunteer := f.seedUser(t, models.RoleVolunteer, "Bengaluru", &models.VolunteerProfile{MaxWeight: 20})
	ctx := context.Background()

	local, _ := f.acceptedDonation(t, localDonor.ID, ngo.ID)

	remote := validDonation()
	remote.City = "Mumbai"
	require.NoError(t, f.donations.Create(ctx, remoteDonor.ID, remote))
	_, err := f.store.MarkDonationAccepted(ctx, remote.ID, ngo.ID)
	require.NoError(t, err)

	heavy := validDonation()
	heavy.Quantity = 100
	require.NoError(t, f.donations.Create(ctx, localDonor.ID, heavy))
	_, err = f.store.MarkDonationAccepted(ctx, heavy.ID, ngo.ID)
	require.NoError(t, err)

	expired := validDonation()
	expired.ExpiryDate = "2020-01-01"
	expired.ExpiryTime = "10:00"
	require.NoError(t, f.donations.Create(ctx, localDonor.ID, expired))
	_, err = f.store.MarkDonationAccepted(ctx, expired.ID, ngo.ID)
	require.NoError(t, err)

	eligible, err := f.assignments.Available(ctx, volunteer)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, local.ID, eligible[0].ID)
}

func TestAvailableEmptyOnInactiveDay(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	volunteer := f.seedUser(t, models.RoleVolunteer, "Bengaluru", &models.VolunteerProfile{
		AvailabilitySchedule: map[string]models.DayAvailability{
			weekdayKey(time.Now()): {Active: false},
		},
	})
	ctx := context.Background()

	f.acceptedDonation(t, donor.ID, ngo.ID)

	eligible, err := f.assignments.Available(ctx, volunteer)
	require.NoError(t, err)
	assert.Empty(t, eligible)
}
