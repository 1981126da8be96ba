package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-rescue-api-server/internal/models"
)

func TestCreateDonationRequiresHygieneDeclaration(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)

	d := validDonation()
	d.Hygiene.NoContamination = false

	err := f.donations.Create(context.Background(), donor.ID, d)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Message, "hygiene")
}

func TestCreateDonationStartsPending(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)

	d := f.seedDonation(t, donor.ID)

	assert.Equal(t, models.DonationStatusPending, d.Status)
	assert.Equal(t, donor.ID, d.Donor)
	assert.Nil(t, d.AcceptedBy)
	assert.Nil(t, d.AssignedTo)
}

func TestGetDonationDonorOwnership(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	other := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	d := f.seedDonation(t, donor.ID)
	ctx := context.Background()

	_, err := f.donations.Get(ctx, d.ID, donor.ID, models.RoleDonor)
	require.NoError(t, err)

	_, err = f.donations.Get(ctx, d.ID, other.ID, models.RoleDonor)
	var forbiddenErr *ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr, "a donor cannot read another donor's donation")

	_, err = f.donations.Get(ctx, d.ID, ngo.ID, models.RoleNGO)
	assert.NoError(t, err, "NGOs can read any donation")
}

func TestUpdateDonationBlockedAfterAcceptance(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	d, _ := f.acceptedDonation(t, donor.ID, ngo.ID)

	name := "Changed"
	_, err := f.donations.Update(context.Background(), d.ID, donor.ID, DonationUpdate{FoodName: &name})
	var conflictErr *ConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

func TestDeleteDonationBlockedAfterAcceptance(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ngo := f.seedUser(t, models.RoleNGO, "Bengaluru", nil)
	ctx := context.Background()

	pending := f.seedDonation(t, donor.ID)
	require.NoError(t, f.donations.Delete(ctx, pending.ID, donor.ID))

	accepted, _ := f.acceptedDonation(t, donor.ID, ngo.ID)
	err := f.donations.Delete(ctx, accepted.ID, donor.ID)
	var conflictErr *ConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

func TestDirectAcceptIsSingleWinner(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	first := f.seedUser(t, models.RoleVolunteer, "Bengaluru", nil)
	second := f.seedUser(t, models.RoleVolunteer, "Bengaluru", nil)
	d := f.seedDonation(t, donor.ID)
	ctx := context.Background()

	accepted, err := f.donations.Accept(ctx, d.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DonationStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.AssignedTo)
	assert.Equal(t, first.ID, *accepted.AssignedTo)

	_, err = f.donations.Accept(ctx, d.ID, second.ID)
	var conflictErr *ConflictError
	assert.ErrorAs(t, err, &conflictErr, "the second acceptor loses")
}

func TestMarkPickedUpRequiresAssignee(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	volunteer := f.seedUser(t, models.RoleVolunteer, "Bengaluru", nil)
	stranger := f.seedUser(t, models.RoleVolunteer, "Bengaluru", nil)
	d := f.seedDonation(t, donor.ID)
	ctx := context.Background()

	_, err := f.donations.Accept(ctx, d.ID, volunteer.ID)
	require.NoError(t, err)

	_, err = f.donations.MarkPickedUp(ctx, d.ID, stranger.ID)
	var forbiddenErr *ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)

	picked, err := f.donations.MarkPickedUp(ctx, d.ID, volunteer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DonationStatusPickedUp, picked.Status)
	assert.NotNil(t, picked.PickedUpAt)
}

func TestListAvailableSkipsExpired(t *testing.T) {
	f := newFixture(t)
	donor := f.seedUser(t, models.RoleDonor, "Bengaluru", nil)
	ctx := context.Background()

	fresh := f.seedDonation(t, donor.ID)

	expired := validDonation()
	expired.ExpiryDate = "2020-01-01"
	expired.ExpiryTime = "10:00"
	require.NoError(t, f.donations.Create(ctx, donor.ID, expired))

	available, err := f.donations.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, fresh.ID, available[0].ID)
}
