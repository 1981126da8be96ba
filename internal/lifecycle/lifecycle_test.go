package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"food-rescue-api-server/internal/models"
	"food-rescue-api-server/internal/store"
)

// recordingNotifier captures notifications so tests can assert on the side
// channel without a hub or database.
type recordingNotifier struct {
	sent []sentNotification
}

type sentNotification struct {
	Recipient primitive.ObjectID
	Title     string
	Type      string
}

func (n *recordingNotifier) Notify(_ context.Context, recipient primitive.ObjectID, title, _, notificationType string, _ map[string]interface{}) {
	n.sent = append(n.sent, sentNotification{Recipient: recipient, Title: title, Type: notificationType})
}

type fixture struct {
	store    *store.MemoryStore
	notifier *recordingNotifier

	donations   *DonationService
	requests    *RequestService
	assignments *AssignmentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemoryStore()
	notifier := &recordingNotifier{}
	log := zap.NewNop()
	return &fixture{
		store:       st,
		notifier:    notifier,
		donations:   NewDonationService(st, log),
		requests:    NewRequestService(st, notifier, log),
		assignments: NewAssignmentService(st, notifier, log),
	}
}

func (f *fixture) seedUser(t *testing.T, role, city string, profile *models.VolunteerProfile) *models.User {
	t.Helper()
	u := &models.User{
		Email:            primitive.NewObjectID().Hex() + "@example.com",
		Password:         "hashed",
		FullName:         "Test " + role,
		Phone:            "9000000000",
		Role:             role,
		Address:          "1 Test Street",
		City:             city,
		State:            "Karnataka",
		Pincode:          "560001",
		IsAvailable:      true,
		VolunteerProfile: profile,
	}
	require.NoError(t, f.store.InsertUser(context.Background(), u))
	return u
}

// validDonation builds a donation that passes creation validation and expires
// tomorrow.
func validDonation() *models.Donation {
	tomorrow := time.Now().Add(24 * time.Hour)
	return &models.Donation{
		FoodType:          "cooked",
		FoodName:          "Veg Biryani",
		Quantity:          10,
		Unit:              "kg",
		EstimatedServings: 20,
		PreparationDate:   time.Now().Format("2006-01-02"),
		PreparationTime:   "09:00",
		ExpiryDate:        tomorrow.Format("2006-01-02"),
		ExpiryTime:        "23:00",
		StorageCondition:  "refrigerated",
		PickupAddress:     "12 MG Road",
		City:              "Bengaluru",
		PickupDeadline:    tomorrow.Format("2006-01-02") + "T18:00",
		Hygiene: models.Hygiene{
			SafeHandling:       true,
			TemperatureControl: true,
			ProperPackaging:    true,
			NoContamination:    true,
		},
	}
}

func (f *fixture) seedDonation(t *testing.T, donorID primitive.ObjectID) *models.Donation {
	t.Helper()
	d := validDonation()
	require.NoError(t, f.donations.Create(context.Background(), donorID, d))
	return d
}

// acceptedDonation runs the request flow until the donation is NGO-accepted
// and returns both sides.
func (f *fixture) acceptedDonation(t *testing.T, donorID, ngoID primitive.ObjectID) (*models.Donation, *models.Request) {
	t.Helper()
	ctx := context.Background()

	d := f.seedDonation(t, donorID)
	request, err := f.requests.Create(ctx, ngoID, d.ID, "")
	require.NoError(t, err)
	request, err = f.requests.Accept(ctx, request.ID, ngoID)
	require.NoError(t, err)

	d, err = f.store.GetDonation(ctx, d.ID)
	require.NoError(t, err)
	return d, request
}
