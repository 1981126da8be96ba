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

// AssignmentService owns Assignment.status and drives the transit side of the
// donation lifecycle.
type AssignmentService struct {
	assignments store.AssignmentStore
	donations   store.DonationStore
	requests    store.RequestStore
	users       store.UserStore
	notifier    Notifier
	log         *zap.Logger
}

func NewAssignmentService(s store.Store, notifier Notifier, log *zap.Logger) *AssignmentService {
	return &AssignmentService{
		assignments: s,
		donations:   s,
		requests:    s,
		users:       s,
		notifier:    notifier,
		log:         log,
	}
}

// Create is the admin/NGO-initiated path: assign a volunteer to a donation
// that is pending or accepted. The new assignment starts as "pending" and
// waits for the volunteer to accept.
func (s *AssignmentService) Create(ctx context.Context, donationID, volunteerID primitive.ObjectID) (*models.Assignment, error) {
	donation, err := s.donations.GetDonation(ctx, donationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("Donation not found")
		}
		return nil, err
	}

	volunteer, err := s.users.GetUser(ctx, volunteerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("Volunteer not found")
		}
		return nil, err
	}
	if volunteer.Role != models.RoleVolunteer {
		return nil, validationf("User is not a volunteer")
	}

	if donation.Status != models.DonationStatusPending && donation.Status != models.DonationStatusAccepted {
		return nil, conflictf("Donation is not available for assignment")
	}
	if _, err := s.assignments.FindActiveAssignment(ctx, donationID); err == nil {
		return nil, conflictf("Donation already has an active assignment")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if !withinCapacity(volunteer, donation) {
		return nil, validationf("Donation exceeds the volunteer's carrying capacity")
	}
	if !availableOn(volunteer, time.Now()) {
		return nil, validationf("Volunteer is not available today")
	}

	donation, err = s.donations.AssignDonation(ctx, donationID, volunteerID,
		[]string{models.DonationStatusPending, models.DonationStatusAccepted})
	if err != nil {
		if errors.Is(err, store.ErrNoMatch) {
			return nil, conflictf("Donation is not available for assignment")
		}
		return nil, err
	}

	assignment := &models.Assignment{
		Donation:  donationID,
		Volunteer: volunteerID,
		Donor:     donation.Donor,
		Status:    models.AssignmentStatusPending,
	}
	if err := s.assignments.InsertAssignment(ctx, assignment); err != nil {
		return nil, err
	}

	s.mirrorRequestAssigned(ctx, donation, assignment)

	s.notifier.Notify(ctx, volunteerID,
		"New pickup assignment",
		"You have been assigned to pick up \""+donation.FoodName+"\"",
		models.NotificationTypeNewAssignment,
		map[string]interface{}{"assignmentId": assignment.ID.Hex(), "donationId": donation.ID.Hex()})

	return assignment, nil
}

// Claim is the volunteer self-service path: take an NGO-accepted donation
// that no one else holds. The assignment starts life already accepted.
func (s *AssignmentService) Claim(ctx context.Context, donationID, volunteerID primitive.ObjectID) (*models.Assignment, error) {
	donation, err := s.donations.GetDonation(ctx, donationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("Donation not found")
		}
		return nil, err
	}
	if donation.Status != models.DonationStatusAccepted || donation.AssignedTo != nil {
		return nil, conflictf("Donation is no longer available")
	}

	volunteer, err := s.users.GetUser(ctx, volunteerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("Volunteer not found")
		}
		return nil, err
	}
	if !withinCapacity(volunteer, donation) {
		return nil, validationf("Donation exceeds your carrying capacity")
	}
	if !availableOn(volunteer, time.Now()) {
		return nil, validationf("You are not available today according to your schedule")
	}

	donation, err = s.donations.AssignDonation(ctx, donationID, volunteerID,
		[]string{models.DonationStatusAccepted})
	if err != nil {
		if errors.Is(err, store.ErrNoMatch) {
			return nil, conflictf("Donation is no longer available")
		}
		return nil, err
	}

	now := time.Now()
	assignment := &models.Assignment{
		Donation:   donationID,
		Volunteer:  volunteerID,
		Donor:      donation.Donor,
		Status:     models.AssignmentStatusAccepted,
		AcceptedAt: &now,
	}
	if err := s.assignments.InsertAssignment(ctx, assignment); err != nil {
		return nil, err
	}

	s.mirrorRequestAssigned(ctx, donation, assignment)

	if donation.AcceptedBy != nil {
		s.notifier.Notify(ctx, *donation.AcceptedBy,
			"Volunteer assigned",
			"A volunteer has claimed the pickup for \""+donation.FoodName+"\"",
			models.NotificationTypeAssignmentUpdate,
			map[string]interface{}{"assignmentId": assignment.ID.Hex(), "donationId": donation.ID.Hex()})
	}

	return assignment, nil
}

// mirrorRequestAssigned moves the accepting NGO's request to "assigned".
// Best-effort: a missing request (direct acceptance path) is not an error.
func (s *AssignmentService) mirrorRequestAssigned(ctx context.Context, donation *models.Donation, assignment *models.Assignment) {
	if donation.AcceptedBy == nil {
		return
	}
	request, err := s.requests.FindRequestByDonationAndNGO(ctx, donation.ID, *donation.AcceptedBy)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn("request mirror lookup failed",
				zap.String("donation", donation.ID.Hex()), zap.Error(err))
		}
		return
	}
	if request.Terminal() {
		return
	}
	now := time.Now()
	request.Status = models.RequestStatusAssigned
	request.Volunteer = &assignment.Volunteer
	request.Assignment = &assignment.ID
	request.AssignedAt = &now
	if err := s.requests.UpdateRequest(ctx, request); err != nil {
		s.log.Warn("request mirror update failed",
			zap.String("request", request.ID.Hex()), zap.Error(err))
	}
}

// Accept moves a pending assignment to accepted.
func (s *AssignmentService) Accept(ctx context.Context, id, volunteerID primitive.ObjectID) (*models.Assignment, error) {
	assignment, err := s.assignments.GetAssignment(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("Assignment not found")
		}
		return nil, err
	}
	if assignment.Volunteer != volunteerID {
		return nil, forbiddenf("Not authorized")
	}
	if assignment.Status != models.AssignmentStatusPending {
		return nil, conflictf("Assignment cannot be accepted")
	}

	now := time.Now()
	assignment.Status = models.AssignmentStatusAccepted
	assignment.AcceptedAt = &now
	if err := s.assignments.UpdateAssignment(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// UpdateLocation records the volunteer's position. The first ping on an
// accepted assignment flips it to in_transit and cascades: the donation goes
// in_transit, the accepting NGO's request goes picked_up. Subsequent pings
// only move the location.
func (s *AssignmentService) UpdateLocation(ctx context.Context, id, volunteerID primitive.ObjectID, lat, lng float64) (*models.Assignment, error) {
	assignment, err := s.assignments.GetAssignment(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("Assignment not found")
		}
		return nil, err
	}
	if assignment.Volunteer != volunteerID {
		return nil, forbiddenf("Not authorized")
	}

	now := time.Now()
	assignment.CurrentLocation = &models.TransitLocation{Lat: lat, Lng: lng, LastUpdated: now}

	startTransit := assignment.Status == models.AssignmentStatusAccepted && assignment.StartedAt == nil
	if startTransit {
		assignment.Status = models.AssignmentStatusInTransit
		assignment.StartedAt = &now
	}

	if err := s.assignments.UpdateAssignment(ctx, assignment); err != nil {
		return nil, err
	}

	if startTransit {
		if donation, err := s.donations.GetDonation(ctx, assignment.Donation); err == nil {
			donation.Status = models.DonationStatusInTransit
			if err := s.donations.UpdateDonation(ctx, donation); err != nil {
				s.log.Warn("donation transit mirror failed",
					zap.String("assignment", assignment.ID.Hex()), zap.Error(err))
			}
			s.mirrorRequestStatus(ctx, donation, models.RequestStatusPickedUp, now)
		} else {
			s.log.Warn("donation lookup failed while starting transit",
				zap.String("assignment", assignment.ID.Hex()), zap.Error(err))
		}
	}

	return assignment, nil
}

// Complete finishes the assignment and cascades delivery to the donation and
// the accepting NGO's request.
func (s *AssignmentService) Complete(ctx context.Context, id, volunteerID primitive.ObjectID, notes string, rating *int) (*models.Assignment, error) {
	assignment, err := s.assignments.GetAssignment(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("Assignment not found")
		}
		return nil, err
	}
	if assignment.Volunteer != volunteerID {
		return nil, forbiddenf("Not authorized")
	}
	if assignment.Status != models.AssignmentStatusInTransit && assignment.Status != models.AssignmentStatusAccepted {
		return nil, conflictf("Assignment cannot be completed")
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, validationf("Rating must be between 1 and 5")
	}

	now := time.Now()
	assignment.Status = models.AssignmentStatusCompleted
	assignment.CompletedAt = &now
	assignment.CompletionNotes = notes
	assignment.Rating = rating
	if err := s.assignments.UpdateAssignment(ctx, assignment); err != nil {
		return nil, err
	}

	if donation, err := s.donations.GetDonation(ctx, assignment.Donation); err == nil {
		donation.Status = models.DonationStatusDelivered
		donation.DeliveredAt = &now
		if err := s.donations.UpdateDonation(ctx, donation); err != nil {
			s.log.Warn("donation delivery mirror failed",
				zap.String("assignment", assignment.ID.Hex()), zap.Error(err))
		}
		s.mirrorRequestStatus(ctx, donation, models.RequestStatusDelivered, now)

		s.notifier.Notify(ctx, donation.Donor,
			"Donation delivered",
			"Your donation \""+donation.FoodName+"\" has been delivered",
			models.NotificationTypeStatusUpdate,
			map[string]interface{}{"donationId": donation.ID.Hex()})
		if donation.AcceptedBy != nil {
			s.notifier.Notify(ctx, *donation.AcceptedBy,
				"Donation delivered",
				"The donation \""+donation.FoodName+"\" has been delivered",
				models.NotificationTypeStatusUpdate,
				map[string]interface{}{"donationId": donation.ID.Hex()})
		}
	} else {
		s.log.Warn("donation lookup failed while completing assignment",
			zap.String("assignment", assignment.ID.Hex()), zap.Error(err))
	}

	return assignment, nil
}

// mirrorRequestStatus advances the accepting NGO's request to the given
// status. Best-effort.
func (s *AssignmentService) mirrorRequestStatus(ctx context.Context, donation *models.Donation, status string, now time.Time) {
	if donation.AcceptedBy == nil {
		return
	}
	request, err := s.requests.FindRequestByDonationAndNGO(ctx, donation.ID, *donation.AcceptedBy)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn("request mirror lookup failed",
				zap.String("donation", donation.ID.Hex()), zap.Error(err))
		}
		return
	}
	if request.Terminal() {
		return
	}
	request.Status = status
	switch status {
	case models.RequestStatusPickedUp:
		request.PickedUpAt = &now
	case models.RequestStatusDelivered:
		request.DeliveredAt = &now
	}
	if err := s.requests.UpdateRequest(ctx, request); err != nil {
		s.log.Warn("request mirror update failed",
			zap.String("request", request.ID.Hex()), zap.Error(err))
	}
}

// Cancel aborts a not-yet-completed assignment and releases the donation. The
// donation keeps its NGO acceptance if it had one, otherwise returns to the
// open pool.
func (s *AssignmentService) Cancel(ctx context.Context, id, actorID primitive.ObjectID, actorRole, reason string) (*models.Assignment, error) {
	assignment, err := s.assignments.GetAssignment(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("Assignment not found")
		}
		return nil, err
	}
	if actorRole == models.RoleVolunteer && assignment.Volunteer != actorID {
		return nil, forbiddenf("Not authorized")
	}
	if assignment.Status == models.AssignmentStatusCompleted {
		return nil, conflictf("Completed assignment cannot be cancelled")
	}

	now := time.Now()
	assignment.Status = models.AssignmentStatusCancelled
	assignment.CancelledAt = &now
	assignment.CancellationReason = reason
	if err := s.assignments.UpdateAssignment(ctx, assignment); err != nil {
		return nil, err
	}

	if donation, err := s.donations.GetDonation(ctx, assignment.Donation); err == nil {
		donation.AssignedTo = nil
		if donation.AcceptedBy != nil {
			donation.Status = models.DonationStatusAccepted
		} else {
			donation.Status = models.DonationStatusPending
		}
		if err := s.donations.UpdateDonation(ctx, donation); err != nil {
			s.log.Warn("donation release failed after assignment cancellation",
				zap.String("assignment", assignment.ID.Hex()), zap.Error(err))
		}
		if donation.AcceptedBy != nil {
			s.notifier.Notify(ctx, *donation.AcceptedBy,
				"Assignment cancelled",
				"The pickup for \""+donation.FoodName+"\" was cancelled",
				models.NotificationTypeAssignmentUpdate,
				map[string]interface{}{"assignmentId": assignment.ID.Hex(), "donationId": donation.ID.Hex()})
		}
	} else {
		s.log.Warn("donation lookup failed after assignment cancellation",
			zap.String("assignment", assignment.ID.Hex()), zap.Error(err))
	}

	return assignment, nil
}

// Get returns one assignment.
func (s *AssignmentService) Get(ctx context.Context, id primitive.ObjectID) (*models.Assignment, error) {
	assignment, err := s.assignments.GetAssignment(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("Assignment not found")
		}
		return nil, err
	}
	return assignment, nil
}

// ListForVolunteer returns a volunteer's assignments, optionally by status.
func (s *AssignmentService) ListForVolunteer(ctx context.Context, volunteerID primitive.ObjectID, status string) ([]models.Assignment, error) {
	return s.assignments.ListAssignments(ctx, store.AssignmentFilter{Volunteer: &volunteerID, Status: status})
}

// ListAll returns every assignment, optionally by status.
func (s *AssignmentService) ListAll(ctx context.Context, status string) ([]models.Assignment, error) {
	return s.assignments.ListAssignments(ctx, store.AssignmentFilter{Status: status})
}

// Available returns the donations the volunteer could claim right now:
// NGO-accepted, unassigned, in the volunteer's city, not expired, within
// capacity, on an active schedule day.
func (s *AssignmentService) Available(ctx context.Context, volunteer *models.User) ([]models.Donation, error) {
	donations, err := s.donations.ListDonations(ctx, store.DonationFilter{
		Status:        models.DonationStatusAccepted,
		Unassigned:    true,
		HasAcceptedBy: true,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	eligible := []models.Donation{}
	if !availableOn(volunteer, now) {
		return eligible, nil
	}
	for i := range donations {
		d := &donations[i]

		city := d.City
		if city == "" {
			if donor, err := s.users.GetUser(ctx, d.Donor); err == nil {
				city = donationCity(d, donor)
			}
		}
		if !cityMatches(volunteer.City, city) {
			continue
		}
		if d.Expired(now) {
			continue
		}
		if !withinCapacity(volunteer, d) {
			continue
		}
		eligible = append(eligible, *d)
	}
	return eligible, nil
}
