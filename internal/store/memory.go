package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"food-rescue-api-server/internal/models"
)

// MemoryStore is an in-memory Store used by lifecycle tests. It mirrors the
// mongo implementation's semantics, including the unique (donation, ngo)
// request index and the guarded donation writes.
type MemoryStore struct {
	mu sync.Mutex

	users         map[primitive.ObjectID]models.User
	donations     map[primitive.ObjectID]models.Donation
	requests      map[primitive.ObjectID]models.Request
	assignments   map[primitive.ObjectID]models.Assignment
	notifications map[primitive.ObjectID]models.Notification
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[primitive.ObjectID]models.User),
		donations:     make(map[primitive.ObjectID]models.Donation),
		requests:      make(map[primitive.ObjectID]models.Request),
		assignments:   make(map[primitive.ObjectID]models.Assignment),
		notifications: make(map[primitive.ObjectID]models.Notification),
	}
}

var _ Store = (*MemoryStore)(nil)

// --- users ---

func (s *MemoryStore) InsertUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicate
		}
	}
	now := time.Now()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return ErrNotFound
	}
	u.UpdatedAt = time.Now()
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) ListUsers(_ context.Context, f UserFilter) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := []models.User{}
	for _, u := range s.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.City != "" && u.City != f.City {
			continue
		}
		if f.Available != nil && u.IsAvailable != *f.Available {
			continue
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

// --- donations ---

func (s *MemoryStore) InsertDonation(_ context.Context, d *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	d.ID = primitive.NewObjectID()
	d.CreatedAt = now
	d.UpdatedAt = now
	s.donations[d.ID] = *d
	return nil
}

func (s *MemoryStore) GetDonation(_ context.Context, id primitive.ObjectID) (*models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemoryStore) UpdateDonation(_ context.Context, d *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.donations[d.ID]; !ok {
		return ErrNotFound
	}
	d.UpdatedAt = time.Now()
	s.donations[d.ID] = *d
	return nil
}

func (s *MemoryStore) DeleteDonation(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.donations[id]; !ok {
		return ErrNotFound
	}
	delete(s.donations, id)
	return nil
}

func (s *MemoryStore) ListDonations(_ context.Context, f DonationFilter) ([]models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	donations := []models.Donation{}
	for _, d := range s.donations {
		if f.Donor != nil && d.Donor != *f.Donor {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.Unassigned && d.AssignedTo != nil {
			continue
		}
		if f.HasAcceptedBy && d.AcceptedBy == nil {
			continue
		}
		donations = append(donations, d)
	}
	sort.Slice(donations, func(i, j int) bool { return donations[i].CreatedAt.After(donations[j].CreatedAt) })
	return donations, nil
}

func (s *MemoryStore) MarkDonationAccepted(_ context.Context, id, ngoID primitive.ObjectID) (*models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[id]
	if !ok || d.Status != models.DonationStatusPending {
		return nil, ErrNoMatch
	}
	now := time.Now()
	d.Status = models.DonationStatusAccepted
	d.AcceptedBy = &ngoID
	d.AcceptedAt = &now
	d.UpdatedAt = now
	s.donations[id] = d
	return &d, nil
}

func (s *MemoryStore) AcceptDonationDirect(_ context.Context, id, actorID primitive.ObjectID) (*models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[id]
	if !ok || d.Status != models.DonationStatusPending {
		return nil, ErrNoMatch
	}
	now := time.Now()
	d.Status = models.DonationStatusAccepted
	d.AssignedTo = &actorID
	d.AcceptedAt = &now
	d.UpdatedAt = now
	s.donations[id] = d
	return &d, nil
}

func (s *MemoryStore) AssignDonation(_ context.Context, id, volunteerID primitive.ObjectID, fromStatuses []string) (*models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[id]
	if !ok || d.AssignedTo != nil {
		return nil, ErrNoMatch
	}
	matched := false
	for _, status := range fromStatuses {
		if d.Status == status {
			matched = true
			break
		}
	}
	if !matched {
		return nil, ErrNoMatch
	}
	d.Status = models.DonationStatusAssigned
	d.AssignedTo = &volunteerID
	d.UpdatedAt = time.Now()
	s.donations[id] = d
	return &d, nil
}

// --- requests ---

func (s *MemoryStore) InsertRequest(_ context.Context, r *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.requests {
		if existing.Donation == r.Donation && existing.NGO == r.NGO {
			return ErrDuplicate
		}
	}
	now := time.Now()
	r.ID = primitive.NewObjectID()
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.RequestedAt.IsZero() {
		r.RequestedAt = now
	}
	s.requests[r.ID] = *r
	return nil
}

func (s *MemoryStore) GetRequest(_ context.Context, id primitive.ObjectID) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) UpdateRequest(_ context.Context, r *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[r.ID]; !ok {
		return ErrNotFound
	}
	r.UpdatedAt = time.Now()
	s.requests[r.ID] = *r
	return nil
}

func (s *MemoryStore) DeleteRequest(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[id]; !ok {
		return ErrNotFound
	}
	delete(s.requests, id)
	return nil
}

func (s *MemoryStore) ListRequests(_ context.Context, f RequestFilter) ([]models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	requests := []models.Request{}
	for _, r := range s.requests {
		if f.NGO != nil && r.NGO != *f.NGO {
			continue
		}
		if f.Donation != nil && r.Donation != *f.Donation {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		requests = append(requests, r)
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].CreatedAt.After(requests[j].CreatedAt) })
	return requests, nil
}

func (s *MemoryStore) FindRequestByDonationAndNGO(_ context.Context, donationID, ngoID primitive.ObjectID) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.Donation == donationID && r.NGO == ngoID {
			r := r
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

// --- assignments ---

func (s *MemoryStore) InsertAssignment(_ context.Context, a *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	a.ID = primitive.NewObjectID()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.AssignedAt.IsZero() {
		a.AssignedAt = now
	}
	s.assignments[a.ID] = *a
	return nil
}

func (s *MemoryStore) GetAssignment(_ context.Context, id primitive.ObjectID) (*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *MemoryStore) UpdateAssignment(_ context.Context, a *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assignments[a.ID]; !ok {
		return ErrNotFound
	}
	a.UpdatedAt = time.Now()
	s.assignments[a.ID] = *a
	return nil
}

func (s *MemoryStore) ListAssignments(_ context.Context, f AssignmentFilter) ([]models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	assignments := []models.Assignment{}
	for _, a := range s.assignments {
		if f.Volunteer != nil && a.Volunteer != *f.Volunteer {
			continue
		}
		if f.Donation != nil && a.Donation != *f.Donation {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		assignments = append(assignments, a)
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].CreatedAt.After(assignments[j].CreatedAt) })
	return assignments, nil
}

func (s *MemoryStore) FindActiveAssignment(_ context.Context, donationID primitive.ObjectID) (*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.assignments {
		if a.Donation == donationID && a.Active() {
			a := a
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

// --- notifications ---

func (s *MemoryStore) InsertNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	s.notifications[n.ID] = *n
	return nil
}

func (s *MemoryStore) GetNotification(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &n, nil
}

func (s *MemoryStore) ListNotifications(_ context.Context, recipient primitive.ObjectID, limit int64) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notifications := []models.Notification{}
	for _, n := range s.notifications {
		if n.Recipient == recipient {
			notifications = append(notifications, n)
		}
	}
	sort.Slice(notifications, func(i, j int) bool { return notifications[i].CreatedAt.After(notifications[j].CreatedAt) })
	if limit > 0 && int64(len(notifications)) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (s *MemoryStore) CountUnreadNotifications(_ context.Context, recipient primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.notifications {
		if n.Recipient == recipient && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) MarkNotificationRead(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return ErrNotFound
	}
	n.IsRead = true
	s.notifications[id] = n
	return nil
}

func (s *MemoryStore) MarkAllNotificationsRead(_ context.Context, recipient primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.notifications {
		if n.Recipient == recipient && !n.IsRead {
			n.IsRead = true
			s.notifications[id] = n
		}
	}
	return nil
}
