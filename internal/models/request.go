package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RideRequest is a posted ride-seeking entry: who needs a ride, from where
// and when. Requests are created once, never updated, and deleted by id.
type RideRequest struct {
	ID uint `json:"-" gorm:"primarykey"`

	RequestID string `json:"requestID" gorm:"uniqueIndex"` // stable public handle
	UserID    string `json:"userId"`                       // requester's login token
	Location  string `json:"location"`
	Time      string `json:"time"`

	// CreatedAt is the only sort key; listings are newest first.
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate assigns the public id.
func (r *RideRequest) BeforeCreate(tx *gorm.DB) error {
	if r.RequestID == "" {
		r.RequestID = uuid.NewString()
	}
	return nil
}
