package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-rescue-api-server/internal/models"
)

func TestCreateRequestRejectsDuplicate(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	d := f.seedDonation(t, donor.ID)
	ctx := context.Background()

	_, err := f.requests.Create(ctx, ngo.ID, d.ID, "first")
	require.NoError(t, err)

	_, err = f.requests.Create(ctx, ngo.ID, d.ID, "second")
	var conflictErr *ConflictError
	assert.ErrorAs(t, err, &conflictErr, "one request per (donation, ngo) pair")
}

func TestCreateRequestRequiresPendingDonation(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	other := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	ctx := context.Background()

	d, _ := f.acceptedDonation(t, donor.ID, ngo.ID)

	_, err := f.requests.Create(ctx, other.ID, d.ID, "")
	var conflictErr *ConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

func TestAcceptRequestSingleWinner(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	first := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	second := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	d := f.seedDonation(t, donor.ID)
	ctx := context.Background()

	requestA, err := f.requests.Create(ctx, first.ID, d.ID, "")
	require.NoError(t, err)
	requestB, err := f.requests.Create(ctx, second.ID, d.ID, "")
	require.NoError(t, err)

	accepted, err := f.requests.Accept(ctx, requestA.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, accepted.Status)
	assert.NotNil(t, accepted.AcceptedAt)

	_, err = f.requests.Accept(ctx, requestB.ID, second.ID)
	var conflictErr *ConflictError
	assert.ErrorAs(t, err, &conflictErr, "the donation can be accepted once")

	donation, err := f.store.GetDonation(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DonationStatusAccepted, donation.Status)
	require.NotNil(t, donation.AcceptedBy)
	assert.Equal(t, first.ID, *donation.AcceptedBy)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, donor.ID, f.notifier.sent[0].Recipient, "the donor is notified of the acceptance")
}

func TestRequestOwnership(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	other := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	d := f.seedDonation(t, donor.ID)
	ctx := context.Background()

	request, err := f.requests.Create(ctx, ngo.ID, d.ID, "")
	require.NoError(t, err)

	_, err = f.requests.Get(ctx, request.ID, other.ID)
	var forbiddenErr *ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)

	_, err = f.requests.Accept(ctx, request.ID, other.ID)
	assert.ErrorAs(t, err, &forbiddenErr)
}

func TestAssignVolunteerChecksCapacityAndSchedule(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	weak := f.seedUser(t, models.RoleVolunteer, "Bengaluru", &models.VolunteerProfile{MaxWeight: 5})
	offToday := f.seedUser(t, models.RoleVolunteer, "Bengaluru", &models.VolunteerProfile{
		AvailabilitySchedule: map[string]models.DayAvailability{
			weekdayKey(time.Now()): {Active: false},
		},
	})
	ctx := context.Background()

	_, request := f.acceptedDonation(t, donor.ID, ngo.ID)

	var validationErr *ValidationError
	_, _, err := f.requests.AssignVolunteer(ctx, request.ID, ngo.ID, weak.ID)
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Message, "capacity")

	_, _, err = f.requests.AssignVolunteer(ctx, request.ID, ngo.ID, offToday.ID)
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Message, "available")
}

func TestAssignVolunteerLinksAllThreeEntities(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	volunteer := f.seedUser(t, models.RoleVolunteer, "Bengaluru", &models.VolunteerProfile{MaxWeight: 50})
	ctx := context.Background()

	d, request := f.acceptedDonation(t, donor.ID, ngo.ID)

	request, assignment, err := f.requests.AssignVolunteer(ctx, request.ID, ngo.ID, volunteer.ID)
	require.NoError(t, err)

	assert.Equal(t, models.RequestStatusAssigned, request.Status)
	require.NotNil(t, request.Volunteer)
	assert.Equal(t, volunteer.ID, *request.Volunteer)
	require.NotNil(t, request.Assignment)
	assert.Equal(t, assignment.ID, *request.Assignment)

	assert.Equal(t, models.AssignmentStatusPending, assignment.Status)
	assert.Equal(t, d.ID, assignment.Donation)
	assert.Equal(t, donor.ID, assignment.Donor)

	donation, err := f.store.GetDonation(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DonationStatusAssigned, donation.Status)
	require.NotNil(t, donation.AssignedTo)
	assert.Equal(t, volunteer.ID, *donation.AssignedTo)

	// Another volunteer cannot be put on the same donation.
	second := f.seedUser(t, models.RoleVolunteer, "Bengaluru", nil)
	_, _, err = f.requests.AssignVolunteer(ctx, request.ID, ngo.ID, second.ID)
	var conflictErr *ConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

func TestCancelAcceptedRequestReleasesDonation(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	ctx := context.Background()

	d, request := f.acceptedDonation(t, donor.ID, ngo.ID)

	cancelled, err := f.requests.Cancel(ctx, request.ID, ngo.ID, "changed plans")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCancelled, cancelled.Status)
	assert.Equal(t, "changed plans", cancelled.CancellationReason)

	donation, err := f.store.GetDonation(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DonationStatusPending, donation.Status, "the donation returns to the open pool")
	assert.Nil(t, donation.AcceptedBy)
	assert.Nil(t, donation.AcceptedAt)
}

func TestCancelPendingRequestLeavesDonationAlone(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	d := f.seedDonation(t, donor.ID)
	ctx := context.Background()

	request, err := f.requests.Create(ctx, ngo.ID, d.ID, "")
	require.NoError(t, err)

	_, err = f.requests.Cancel(ctx, request.ID, ngo.ID, "")
	require.NoError(t, err)

	donation, err := f.store.GetDonation(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DonationStatusPending, donation.Status)
}

func TestCancelIsTerminal(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	d := f.seedDonation(t, donor.ID)
	ctx := context.Background()

	request, err := f.requests.Create(ctx, ngo.ID, d.ID, "")
	require.NoError(t, err)
	_, err = f.requests.Cancel(ctx, request.ID, ngo.ID, "")
	require.NoError(t, err)

	var conflictErr *ConflictError
	_, err = f.requests.Cancel(ctx, request.ID, ngo.ID, "")
	assert.ErrorAs(t, err, &conflictErr)
	_, err = f.requests.Accept(ctx, request.ID, ngo.ID)
	assert.ErrorAs(t, err, &conflictErr)
}

func TestDeleteRequestOnlyWhilePending(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	ctx := context.Background()

	d := f.seedDonation(t, donor.ID)
	request, err := f.requests.Create(ctx, ngo.ID, d.ID, "")
	require.NoError(t, err)
	require.NoError(t, f.requests.Delete(ctx, request.ID, ngo.ID))

	_, accepted := f.acceptedDonation(t, donor.ID, ngo.ID)
	err = f.requests.Delete(ctx, accepted.ID, ngo.ID)
	var conflictErr *ConflictError
	assert.ErrorAs(t, err, &conflictErr)
}
