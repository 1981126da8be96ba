package lifecycle

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"food-rescue-api-server/internal/models"
	"food-rescue-api-server/internal/store"
)

// donationCommitted are the statuses after which a donor can no longer edit
// or delete the donation.
var donationCommitted = map[string]bool{
	models.DonationStatusAccepted:  true,
	models.DonationStatusPickedUp:  true,
	models.DonationStatusDelivered: true,
}

// DonationService owns Donation.status.
type DonationService struct {
	donations store.DonationStore
	log       *zap.Logger
}

func NewDonationService(donations store.DonationStore, log *zap.Logger) *DonationService {
	return &DonationService{donations: donations, log: log}
}

// DonationUpdate is a partial update; nil fields are left untouched.
type DonationUpdate struct {
	FoodType           *string
	FoodName           *string
	Description        *string
	Quantity           *float64
	Unit               *string
	EstimatedServings  *int
	DietaryTags        *[]string
	Allergens          *[]string
	PreparationDate    *string
	PreparationTime    *string
	ExpiryDate         *string
	ExpiryTime         *string
	StorageCondition   *string
	PickupAddress      *string
	City               *string
	PickupDeadline     *string
	PickupInstructions *string
	Location           *models.GeoPoint
}

// Create validates and stores a new donation with status "pending".
func (s *DonationService) Create(ctx context.Context, donorID primitive.ObjectID, d *models.Donation) error {
	if err := validateDonation(d); err != nil {
		return err
	}

	d.Donor = donorID
	d.Status = models.DonationStatusPending
	d.AcceptedBy = nil
	d.AssignedTo = nil
	d.AcceptedAt = nil
	d.PickedUpAt = nil
	d.DeliveredAt = nil
	d.CancelledAt = nil

	return s.donations.InsertDonation(ctx, d)
}

func validateDonation(d *models.Donation) error {
	switch {
	case d.FoodName == "":
		return validationf("Food name is required")
	case d.FoodType == "":
		return validationf("Food type is required")
	case d.Quantity < 1:
		return validationf("Quantity must be at least 1")
	case d.Unit == "":
		return validationf("Unit is required")
	case d.EstimatedServings < 1:
		return validationf("Estimated servings must be at least 1")
	case d.PreparationDate == "" || d.PreparationTime == "":
		return validationf("Preparation date and time are required")
	case d.ExpiryDate == "" || d.ExpiryTime == "":
		return validationf("Expiry date and time are required")
	case d.StorageCondition == "":
		return validationf("Storage condition is required")
	case d.PickupAddress == "":
		return validationf("Pickup address is required")
	case d.City == "":
		return validationf("City is required")
	case d.PickupDeadline == "":
		return validationf("Pickup deadline is required")
	}
	if !d.Hygiene.Declared() {
		return validationf("All hygiene confirmations are required")
	}
	return nil
}

// Get returns the donation. Donors may only read their own.
func (s *DonationService) Get(ctx context.Context, id, actorID primitive.ObjectID, role string) (*models.Donation, error) {
	d, err := s.donations.GetDonation(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("Donation not found")
		}
		return nil, err
	}
	if role == models.RoleDonor && d.Donor != actorID {
		return nil, forbiddenf("Not authorized to access this donation")
	}
	return d, nil
}

// ListByDonor returns the donor's own donations, optionally by status.
func (s *DonationService) ListByDonor(ctx context.Context, donorID primitive.ObjectID, status string) ([]models.Donation, error) {
	return s.donations.ListDonations(ctx, store.DonationFilter{Donor: &donorID, Status: status})
}

// ListAvailable returns pending, non-expired donations for NGO browsing.
func (s *DonationService) ListAvailable(ctx context.Context) ([]models.Donation, error) {
	donations, err := s.donations.ListDonations(ctx, store.DonationFilter{Status: models.DonationStatusPending})
	if err != nil {
		return nil, err
	}
	now := time.Now()
	available := donations[:0]
	for _, d := range donations {
		if !d.Expired(now) {
			available = append(available, d)
		}
	}
	return available, nil
}

// ownedMutable fetches the donation and applies the donor-edit guards shared
// by Update, Delete and SetPhoto.
func (s *DonationService) ownedMutable(ctx context.Context, id, donorID primitive.ObjectID) (*models.Donation, error) {
	d, err := s.donations.GetDonation(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("Donation not found")
		}
		return nil, err
	}
	if d.Donor != donorID {
		return nil, forbiddenf("Not authorized to modify this donation")
	}
	if donationCommitted[d.Status] {
		return nil, conflictf("Cannot modify donation after it has been accepted")
	}
	return d, nil
}

// Update applies a donor's pre-acceptance edit.
func (s *DonationService) Update(ctx context.Context, id, donorID primitive.ObjectID, patch DonationUpdate) (*models.Donation, error) {
	d, err := s.ownedMutable(ctx, id, donorID)
	if err != nil {
		return nil, err
	}

	applyDonationUpdate(d, patch)
	if err := validateDonation(d); err != nil {
		return nil, err
	}
	if err := s.donations.UpdateDonation(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func applyDonationUpdate(d *models.Donation, patch DonationUpdate) {
	if patch.FoodType != nil {
		d.FoodType = *patch.FoodType
	}
	if patch.FoodName != nil {
		d.FoodName = *patch.FoodName
	}
	if patch.Description != nil {
		d.Description = *patch.Description
	}
	if patch.Quantity != nil {
		d.Quantity = *patch.Quantity
	}
	if patch.Unit != nil {
		d.Unit = *patch.Unit
	}
	if patch.EstimatedServings != nil {
		d.EstimatedServings = *patch.EstimatedServings
	}
	if patch.DietaryTags != nil {
		d.DietaryTags = *patch.DietaryTags
	}
	if patch.Allergens != nil {
		d.Allergens = *patch.Allergens
	}
	if patch.PreparationDate != nil {
		d.PreparationDate = *patch.PreparationDate
	}
	if patch.PreparationTime != nil {
		d.PreparationTime = *patch.PreparationTime
	}
	if patch.ExpiryDate != nil {
		d.ExpiryDate = *patch.ExpiryDate
	}
	if patch.ExpiryTime != nil {
		d.ExpiryTime = *patch.ExpiryTime
	}
	if patch.StorageCondition != nil {
		d.StorageCondition = *patch.StorageCondition
	}
	if patch.PickupAddress != nil {
		d.PickupAddress = *patch.PickupAddress
	}
	if patch.City != nil {
		d.City = *patch.City
	}
	if patch.PickupDeadline != nil {
		d.PickupDeadline = *patch.PickupDeadline
	}
	if patch.PickupInstructions != nil {
		d.PickupInstructions = *patch.PickupInstructions
	}
	if patch.Location != nil {
		d.Location = patch.Location
	}
}

// Delete hard-removes a donation that has not been committed downstream.
func (s *DonationService) Delete(ctx context.Context, id, donorID primitive.ObjectID) error {
	if _, err := s.ownedMutable(ctx, id, donorID); err != nil {
		return err
	}
	return s.donations.DeleteDonation(ctx, id)
}

// SetPhoto records the uploaded food photo URL. Same guards as Update.
func (s *DonationService) SetPhoto(ctx context.Context, id, donorID primitive.ObjectID, url string) (*models.Donation, error) {
	d, err := s.ownedMutable(ctx, id, donorID)
	if err != nil {
		return nil, err
	}
	d.FoodPhoto = url
	if err := s.donations.UpdateDonation(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Accept is the direct acceptance path: the acting NGO/volunteer takes the
// donation without going through a request. Guarded at the store so a
// concurrent acceptor loses with a conflict.
func (s *DonationService) Accept(ctx context.Context, id, actorID primitive.ObjectID) (*models.Donation, error) {
	if _, err := s.donations.GetDonation(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("Donation not found")
		}
		return nil, err
	}

	d, err := s.donations.AcceptDonationDirect(ctx, id, actorID)
	if err != nil {
		if errors.Is(err, store.ErrNoMatch) {
			return nil, conflictf("Donation is not available")
		}
		return nil, err
	}
	return d, nil
}

// MarkPickedUp records the pickup by the currently assigned actor.
func (s *DonationService) MarkPickedUp(ctx context.Context, id, actorID primitive.ObjectID) (*models.Donation, error) {
	return s.markByAssignee(ctx, id, actorID, models.DonationStatusPickedUp)
}

// MarkDelivered records the delivery by the currently assigned actor.
func (s *DonationService) MarkDelivered(ctx context.Context, id, actorID primitive.ObjectID) (*models.Donation, error) {
	return s.markByAssignee(ctx, id, actorID, models.DonationStatusDelivered)
}

func (s *DonationService) markByAssignee(ctx context.Context, id, actorID primitive.ObjectID, status string) (*models.Donation, error) {
	d, err := s.donations.GetDonation(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("Donation not found")
		}
		return nil, err
	}
	if d.AssignedTo == nil || *d.AssignedTo != actorID {
		return nil, forbiddenf("Not authorized")
	}

	now := time.Now()
	d.Status = status
	switch status {
	case models.DonationStatusPickedUp:
		d.PickedUpAt = &now
	case models.DonationStatusDelivered:
		d.DeliveredAt = &now
	}
	if err := s.donations.UpdateDonation(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}
