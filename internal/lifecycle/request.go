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

// RequestService owns Request.status. Requests are the NGO-facing mirror of
// the donation/assignment lifecycle: NGO actions enter here and fan out to
// the other two entities.
type RequestService struct {
	requests    store.RequestStore
	donations   store.DonationStore
	assignments store.AssignmentStore
	users       store.UserStore
	notifier    Notifier
	log         *zap.Logger
}

func NewRequestService(s store.Store, notifier Notifier, log *zap.Logger) *RequestService {
	return &RequestService{
		requests:    s,
		donations:   s,
		assignments: s,
		users:       s,
		notifier:    notifier,
		log:         log,
	}
}

// Create registers an NGO's claim on a pending donation. The unique
// (donation, ngo) index backs up the pre-write existence check.
func (s *RequestService) Create(ctx context.Context, ngoID, donationID primitive.ObjectID, notes string) (*models.Request, error) {
	donation, err := s.donations.GetDonation(ctx, donationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("Donation not found")
		}
		return nil, err
	}
	if donation.Status != models.DonationStatusPending {
		return nil, conflictf("This donation is no longer available")
	}

	if _, err := s.requests.FindRequestByDonationAndNGO(ctx, donationID, ngoID); err == nil {
		return nil, conflictf("You have already requested this donation")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	request := &models.Request{
		Donation: donationID,
		NGO:      ngoID,
		Status:   models.RequestStatusPending,
		Notes:    notes,
	}
	if err := s.requests.InsertRequest(ctx, request); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, conflictf("You have already requested this donation")
		}
		return nil, err
	}
	return request, nil
}

// List returns the NGO's own requests.
func (s *RequestService) List(ctx context.Context, ngoID primitive.ObjectID) ([]models.Request, error) {
	return s.requests.ListRequests(ctx, store.RequestFilter{NGO: &ngoID})
}

// Get returns one request; only its NGO may read it.
func (s *RequestService) Get(ctx context.Context, id, ngoID primitive.ObjectID) (*models.Request, error) {
	return s.owned(ctx, id, ngoID)
}

func (s *RequestService) owned(ctx context.Context, id, ngoID primitive.ObjectID) (*models.Request, error) {
	request, err := s.requests.GetRequest(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("Request not found")
		}
		return nil, err
	}
	if request.NGO != ngoID {
		return nil, forbiddenf("Not authorized")
	}
	return request, nil
}

// Accept commits the NGO's claim. The donation's pending -> accepted move is
// a guarded write, so of two concurrent accepts on the same donation exactly
// one succeeds; the loser sees a conflict.
func (s *RequestService) Accept(ctx context.Context, id, ngoID primitive.ObjectID) (*models.Request, error) {
	request, err := s.owned(ctx, id, ngoID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, conflictf("Request cannot be accepted in its current state")
	}

	donation, err := s.donations.MarkDonationAccepted(ctx, request.Donation, ngoID)
	if err != nil {
		if errors.Is(err, store.ErrNoMatch) {
			return nil, conflictf("Donation is no longer available")
		}
		return nil, err
	}

	now := time.Now()
	request.Status = models.RequestStatusAccepted
	request.AcceptedAt = &now
	if err := s.requests.UpdateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, donation.Donor,
		"Donation accepted",
		"An NGO has accepted your donation \""+donation.FoodName+"\"",
		models.NotificationTypeStatusUpdate,
		map[string]interface{}{"donationId": donation.ID.Hex(), "requestId": request.ID.Hex()})

	return request, nil
}

// AssignVolunteer creates a pending assignment for an accepted request and
// moves request and donation to "assigned".
func (s *RequestService) AssignVolunteer(ctx context.Context, id, ngoID, volunteerID primitive.ObjectID) (*models.Request, *models.Assignment, error) {
	request, err := s.owned(ctx, id, ngoID)
	if err != nil {
		return nil, nil, err
	}
	if request.Status != models.RequestStatusAccepted {
		return nil, nil, conflictf("Can only assign volunteers to accepted requests")
	}

	volunteer, err := s.users.GetUser(ctx, volunteerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, notFoundf("Volunteer not found")
		}
		return nil, nil, err
	}
	if volunteer.Role != models.RoleVolunteer {
		return nil, nil, validationf("User is not a volunteer")
	}

	donation, err := s.donations.GetDonation(ctx, request.Donation)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, notFoundf("Donation not found")
		}
		return nil, nil, err
	}
	if !withinCapacity(volunteer, donation) {
		return nil, nil, validationf("Donation exceeds the volunteer's carrying capacity")
	}
	if !availableOn(volunteer, time.Now()) {
		return nil, nil, validationf("Volunteer is not available today")
	}

	if _, err := s.assignments.FindActiveAssignment(ctx, request.Donation); err == nil {
		return nil, nil, conflictf("Donation already has an active assignment")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, nil, err
	}

	// Claim the donation first; a lost race surfaces here as a conflict.
	if _, err := s.donations.AssignDonation(ctx, request.Donation, volunteerID,
		[]string{models.DonationStatusAccepted}); err != nil {
		if errors.Is(err, store.ErrNoMatch) {
			return nil, nil, conflictf("Donation is no longer available for assignment")
		}
		return nil, nil, err
	}

	assignment := &models.Assignment{
		Donation:  request.Donation,
		Volunteer: volunteerID,
		Donor:     donation.Donor,
		Status:    models.AssignmentStatusPending,
	}
	if err := s.assignments.InsertAssignment(ctx, assignment); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	request.Volunteer = &volunteerID
	request.Assignment = &assignment.ID
	request.Status = models.RequestStatusAssigned
	request.AssignedAt = &now
	if err := s.requests.UpdateRequest(ctx, request); err != nil {
		return nil, nil, err
	}

	s.notifier.Notify(ctx, volunteerID,
		"New pickup assignment",
		"You have been assigned to pick up \""+donation.FoodName+"\"",
		models.NotificationTypeNewAssignment,
		map[string]interface{}{"assignmentId": assignment.ID.Hex(), "donationId": donation.ID.Hex()})

	return request, assignment, nil
}

// Pickup advances the request and mirrors the donation.
func (s *RequestService) Pickup(ctx context.Context, id, ngoID primitive.ObjectID) (*models.Request, error) {
	return s.advance(ctx, id, ngoID, models.RequestStatusPickedUp, models.DonationStatusPickedUp)
}

// Deliver advances the request and mirrors the donation.
func (s *RequestService) Deliver(ctx context.Context, id, ngoID primitive.ObjectID) (*models.Request, error) {
	return s.advance(ctx, id, ngoID, models.RequestStatusDelivered, models.DonationStatusDelivered)
}

func (s *RequestService) advance(ctx context.Context, id, ngoID primitive.ObjectID, requestStatus, donationStatus string) (*models.Request, error) {
	request, err := s.owned(ctx, id, ngoID)
	if err != nil {
		return nil, err
	}
	if request.Terminal() {
		return nil, conflictf("Request is already %s", request.Status)
	}

	now := time.Now()
	request.Status = requestStatus
	switch requestStatus {
	case models.RequestStatusPickedUp:
		request.PickedUpAt = &now
	case models.RequestStatusDelivered:
		request.DeliveredAt = &now
	}
	if err := s.requests.UpdateRequest(ctx, request); err != nil {
		return nil, err
	}

	// Best-effort donation mirror.
	if donation, err := s.donations.GetDonation(ctx, request.Donation); err == nil {
		donation.Status = donationStatus
		switch donationStatus {
		case models.DonationStatusPickedUp:
			donation.PickedUpAt = &now
		case models.DonationStatusDelivered:
			donation.DeliveredAt = &now
		}
		if err := s.donations.UpdateDonation(ctx, donation); err != nil {
			s.log.Warn("donation mirror update failed",
				zap.String("request", request.ID.Hex()), zap.Error(err))
		}
	} else {
		s.log.Warn("donation mirror lookup failed",
			zap.String("request", request.ID.Hex()), zap.Error(err))
	}

	return request, nil
}

// Cancel terminates the request. The donation is released back to "pending"
// when the request had reached "accepted" before cancellation; the prior
// status is captured before the mutation.
func (s *RequestService) Cancel(ctx context.Context, id, ngoID primitive.ObjectID, reason string) (*models.Request, error) {
	request, err := s.owned(ctx, id, ngoID)
	if err != nil {
		return nil, err
	}
	if request.Terminal() {
		return nil, conflictf("Request is already %s", request.Status)
	}

	priorStatus := request.Status

	now := time.Now()
	request.Status = models.RequestStatusCancelled
	request.CancelledAt = &now
	request.CancellationReason = reason
	if err := s.requests.UpdateRequest(ctx, request); err != nil {
		return nil, err
	}

	if priorStatus == models.RequestStatusAccepted {
		if donation, err := s.donations.GetDonation(ctx, request.Donation); err == nil {
			donation.Status = models.DonationStatusPending
			donation.AcceptedBy = nil
			donation.AcceptedAt = nil
			if err := s.donations.UpdateDonation(ctx, donation); err != nil {
				s.log.Warn("donation reset failed after request cancellation",
					zap.String("request", request.ID.Hex()), zap.Error(err))
			}
		} else {
			s.log.Warn("donation lookup failed after request cancellation",
				zap.String("request", request.ID.Hex()), zap.Error(err))
		}
	}

	return request, nil
}

// Delete removes a request that was never accepted.
func (s *RequestService) Delete(ctx context.Context, id, ngoID primitive.ObjectID) error {
	request, err := s.owned(ctx, id, ngoID)
	if err != nil {
		return err
	}
	if request.Status != models.RequestStatusPending {
		return conflictf("Can only delete pending requests")
	}
	return s.requests.DeleteRequest(ctx, id)
}
