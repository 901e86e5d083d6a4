package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/khush256/SMRide-backend/internal/models"
)

// DatabaseStore persists users and ride requests in PostgreSQL via GORM.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store backed by the given database connection.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// UpsertOTP stores a fresh OTP against the user with the given phone number,
// creating the user record if it does not exist yet. A later OTP always
// overwrites an earlier one.
func (s *DatabaseStore) UpsertOTP(phone, otp string, expires time.Time) (*models.User, error) {
	var user models.User
	err := s.db.Where("phone = ?", phone).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{Phone: phone}
	} else if err != nil {
		return nil, err
	}

	user.OTP = otp
	user.OTPExpires = &expires
	if err := s.db.Omit(clause.Associations).Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DatabaseStore) GetUserByPhone(phone string) (*models.User, error) {
	var user models.User
	err := s.db.Where("phone = ?", phone).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DatabaseStore) GetUserByToken(token string) (*models.User, error) {
	// Users awaiting their first login have an empty token column; an empty
	// lookup key must not match them.
	if token == "" {
		return nil, ErrNotFound
	}

	var user models.User
	err := s.db.Preload("AcceptedRides", func(db *gorm.DB) *gorm.DB {
		return db.Order("accepted_rides.id ASC")
	}).Where("token = ?", token).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveUser writes the user back in full, running the model's BeforeSave hook.
// Accepted rides are managed separately and are not touched here.
func (s *DatabaseStore) SaveUser(user *models.User) error {
	return s.db.Omit(clause.Associations).Save(user).Error
}

// AppendAcceptedRide atomically pushes one offer onto the user's accepted
// rides. There is no size bound and no dedup.
func (s *DatabaseStore) AppendAcceptedRide(token string, ride *models.AcceptedRide) (*models.User, error) {
	user, err := s.GetUserByToken(token)
	if err != nil {
		return nil, err
	}

	ride.UserID = user.ID
	if err := s.db.Create(ride).Error; err != nil {
		return nil, err
	}

	user.AcceptedRides = append(user.AcceptedRides, *ride)
	return user, nil
}

func (s *DatabaseStore) UpdateVehicleNo(token, vehicleNo string) (*models.User, error) {
	user, err := s.GetUserByToken(token)
	if err != nil {
		return nil, err
	}

	user.VehicleNo = vehicleNo
	if err := s.SaveUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *DatabaseStore) CreateRequest(req *models.RideRequest) (*models.RideRequest, error) {
	if err := s.db.Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

func (s *DatabaseStore) GetRequest(requestID string) (*models.RideRequest, error) {
	var req models.RideRequest
	err := s.db.Where("request_id = ?", requestID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetRequestsExcluding returns every request not posted by the given token,
// newest first. No pagination.
func (s *DatabaseStore) GetRequestsExcluding(token string) ([]*models.RideRequest, error) {
	var requests []*models.RideRequest
	err := s.db.Where("user_id <> ?", token).
		Order("created_at DESC, id DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *DatabaseStore) GetRequestsByUser(token string) ([]*models.RideRequest, error) {
	var requests []*models.RideRequest
	err := s.db.Where("user_id = ?", token).
		Order("created_at DESC, id DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// DeleteRequest removes the request with the given id and reports how many
// rows were actually deleted, so callers can distinguish a miss from a hit.
func (s *DatabaseStore) DeleteRequest(requestID string) (int64, error) {
	res := s.db.Where("request_id = ?", requestID).Delete(&models.RideRequest{})
	return res.RowsAffected, res.Error
}
