package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khush256/SMRide-backend/internal/models"
)

// MemoryStore holds all data in memory. Used for tests and local development
// without a database (USE_MEMORY_STORE=true).
type MemoryStore struct {
	users    map[uint]*models.User
	requests map[string]*models.RideRequest

	// Mutexes for thread safety
	userMu    sync.RWMutex
	requestMu sync.RWMutex

	// Counters for ID generation
	userCounter    uint
	requestCounter uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uint]*models.User),
		requests: make(map[string]*models.RideRequest),
	}
}

func (m *MemoryStore) UpsertOTP(phone, otp string, expires time.Time) (*models.User, error) {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	for _, u := range m.users {
		if u.Phone == phone {
			u.OTP = otp
			u.OTPExpires = &expires
			return cloneUser(u), nil
		}
	}

	m.userCounter++
	user := &models.User{
		Phone:         phone,
		OTP:           otp,
		OTPExpires:    &expires,
		AcceptedRides: []models.AcceptedRide{},
	}
	user.ID = m.userCounter
	m.users[user.ID] = user
	return cloneUser(user), nil
}

func (m *MemoryStore) GetUserByPhone(phone string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, u := range m.users {
		if u.Phone == phone {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUserByToken(token string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	user, err := m.findByToken(token)
	if err != nil {
		return nil, err
	}
	return cloneUser(user), nil
}

// findByToken requires the caller to hold userMu.
func (m *MemoryStore) findByToken(token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	for _, u := range m.users {
		if u.Token == token {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) SaveUser(user *models.User) error {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	current, ok := m.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	// Run the model hook so the derived flag has a single authority.
	if err := user.BeforeSave(nil); err != nil {
		return err
	}
	saved := cloneUser(user)
	// Accepted rides are managed by AppendAcceptedRide only, matching the
	// database store's save.
	saved.AcceptedRides = current.AcceptedRides
	m.users[user.ID] = saved
	return nil
}

func (m *MemoryStore) AppendAcceptedRide(token string, ride *models.AcceptedRide) (*models.User, error) {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	user, err := m.findByToken(token)
	if err != nil {
		return nil, err
	}

	ride.UserID = user.ID
	ride.ID = uint(len(user.AcceptedRides) + 1)
	user.AcceptedRides = append(user.AcceptedRides, *ride)
	return cloneUser(user), nil
}

func (m *MemoryStore) UpdateVehicleNo(token, vehicleNo string) (*models.User, error) {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	user, err := m.findByToken(token)
	if err != nil {
		return nil, err
	}

	user.VehicleNo = vehicleNo
	if err := user.BeforeSave(nil); err != nil {
		return nil, err
	}
	return cloneUser(user), nil
}

func (m *MemoryStore) CreateRequest(req *models.RideRequest) (*models.RideRequest, error) {
	m.requestMu.Lock()
	defer m.requestMu.Unlock()

	m.requestCounter++
	req.ID = m.requestCounter
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}

	m.requests[req.RequestID] = req
	return req, nil
}

func (m *MemoryStore) GetRequest(requestID string) (*models.RideRequest, error) {
	m.requestMu.RLock()
	defer m.requestMu.RUnlock()

	req, exists := m.requests[requestID]
	if !exists {
		return nil, ErrNotFound
	}
	return req, nil
}

func (m *MemoryStore) GetRequestsExcluding(token string) ([]*models.RideRequest, error) {
	m.requestMu.RLock()
	defer m.requestMu.RUnlock()

	var results []*models.RideRequest
	for _, req := range m.requests {
		if req.UserID != token {
			results = append(results, req)
		}
	}
	sortNewestFirst(results)
	return results, nil
}

func (m *MemoryStore) GetRequestsByUser(token string) ([]*models.RideRequest, error) {
	m.requestMu.RLock()
	defer m.requestMu.RUnlock()

	var results []*models.RideRequest
	for _, req := range m.requests {
		if req.UserID == token {
			results = append(results, req)
		}
	}
	sortNewestFirst(results)
	return results, nil
}

func (m *MemoryStore) DeleteRequest(requestID string) (int64, error) {
	m.requestMu.Lock()
	defer m.requestMu.Unlock()

	if _, exists := m.requests[requestID]; !exists {
		return 0, nil
	}
	delete(m.requests, requestID)
	return 1, nil
}

// cloneUser detaches a user from the store so callers never mutate shared
// state outside the lock. Changes are persisted through SaveUser only.
func cloneUser(u *models.User) *models.User {
	cp := *u
	cp.AcceptedRides = append([]models.AcceptedRide(nil), u.AcceptedRides...)
	if u.OTPExpires != nil {
		expires := *u.OTPExpires
		cp.OTPExpires = &expires
	}
	return &cp
}

// sortNewestFirst orders by creation time, falling back to insertion order
// for requests created within the same instant.
func sortNewestFirst(requests []*models.RideRequest) {
	sort.Slice(requests, func(i, j int) bool {
		if requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].ID > requests[j].ID
		}
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
}
