package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a rider/driver account. A record is created implicitly the
// first time an OTP is requested for a phone number; the login token is
// assigned on the first successful verification and never changes after that.
type User struct {
	gorm.Model `json:"-"`

	// Unverified users carry an empty token until first login; the partial
	// index keeps uniqueness without making empty tokens collide.
	Token string `json:"token" gorm:"index:idx_users_token,unique,where:token <> ''"`
	Phone string `json:"phone" gorm:"index"`

	// Profile fields, filled in after first login
	Name      string `json:"name"`
	Branch    string `json:"branch"`
	Year      string `json:"year"`
	VehicleNo string `json:"vehicleNo"`

	// Transient credential material, cleared on successful verification
	OTP        string     `json:"-"`
	OTPExpires *time.Time `json:"-"`

	// Derived in BeforeSave from name/branch/year. Never set directly.
	IsProfileComplete bool `json:"isProfileComplete"`

	AcceptedRides []AcceptedRide `json:"acceptedRides" gorm:"foreignKey:UserID"`
}

// BeforeSave recomputes IsProfileComplete. This is the only place the flag is
// written; every profile mutation goes through a full save so it always runs.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.IsProfileComplete = u.Name != "" && u.Branch != "" && u.Year != ""
	return nil
}

// AcceptedRide is one driver offer recorded against a user. Rows are
// append-only and returned in insertion order.
type AcceptedRide struct {
	gorm.Model `json:"-"`

	UserID uint `json:"-" gorm:"index"`

	DriverName  string `json:"driverName"`
	DriverPhone string `json:"driverPhone"`
	Location    string `json:"location"`
	Time        string `json:"time"`
	Rate        string `json:"rate"`
}
