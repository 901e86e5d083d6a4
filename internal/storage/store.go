package storage

import (
	"errors"
	"time"

	"github.com/khush256/SMRide-backend/internal/models"
)

// ErrNotFound is returned when a lookup matches no record. Handlers map it to
// a 404; anything else is a 500.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for storage operations
type Store interface {
	// User operations
	UpsertOTP(phone, otp string, expires time.Time) (*models.User, error)
	GetUserByPhone(phone string) (*models.User, error)
	GetUserByToken(token string) (*models.User, error)
	SaveUser(user *models.User) error
	AppendAcceptedRide(token string, ride *models.AcceptedRide) (*models.User, error)
	UpdateVehicleNo(token, vehicleNo string) (*models.User, error)

	// Ride request operations
	CreateRequest(req *models.RideRequest) (*models.RideRequest, error)
	GetRequest(requestID string) (*models.RideRequest, error)
	GetRequestsExcluding(token string) ([]*models.RideRequest, error)
	GetRequestsByUser(token string) ([]*models.RideRequest, error)
	DeleteRequest(requestID string) (int64, error)
}
