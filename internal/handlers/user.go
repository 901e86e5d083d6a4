package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/khush256/SMRide-backend/internal/models"
	"github.com/khush256/SMRide-backend/internal/services"
	"github.com/khush256/SMRide-backend/internal/storage"
	"github.com/khush256/SMRide-backend/internal/utils"
)

const otpTTL = 5 * time.Minute

// UserHandler handles OTP login and profile requests
type UserHandler struct {
	store storage.Store
	sms   *services.TwilioService // nil when SMS delivery is disabled
}

// NewUserHandler creates a new user handler
func NewUserHandler(store storage.Store, sms *services.TwilioService) *UserHandler {
	return &UserHandler{
		store: store,
		sms:   sms,
	}
}

// SendOTP generates a fresh OTP and upserts it against the phone number,
// creating the user record on first contact.
func (h *UserHandler) SendOTP(c *fiber.Ctx) error {
	var body struct {
		Phone string `json:"phone"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if body.Phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Phone number is required",
		})
	}

	otp := utils.GenerateOTP()
	expires := time.Now().Add(otpTTL)

	user, err := h.store.UpsertOTP(body.Phone, otp, expires)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if h.sms != nil {
		// Delivery failure is logged, not surfaced: the code is still in the
		// response body.
		if err := h.sms.SendOTP(body.Phone, otp); err != nil {
			log.Printf("⚠️  OTP SMS to %s failed: %v", body.Phone, err)
		}
	}

	return c.JSON(fiber.Map{
		"message": "OTP sent successfully",
		"phone":   user.Phone,
		"otp":     otp,
	})
}

// VerifyOTP checks the submitted code and logs the user in. The stored OTP is
// cleared only on success; a failed attempt leaves it verifiable.
func (h *UserHandler) VerifyOTP(c *fiber.Ctx) error {
	var body struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if body.Phone == "" || body.OTP == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Phone and OTP are required",
		})
	}

	user, err := h.store.GetUserByPhone(body.Phone)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if user.OTP != body.OTP || user.OTPExpires == nil || time.Now().After(*user.OTPExpires) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired OTP",
		})
	}

	user.OTP = ""
	user.OTPExpires = nil

	// First login mints the token; repeated logins keep it.
	if user.Token == "" {
		token, err := utils.GenerateToken()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		user.Token = token
	}

	if err := h.store.SaveUser(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	userInfo := fiber.Map{"phone": user.Phone}
	if user.IsProfileComplete {
		userInfo["name"] = user.Name
		userInfo["branch"] = user.Branch
		userInfo["year"] = user.Year
		userInfo["vehicleNo"] = user.VehicleNo
	}

	return c.JSON(fiber.Map{
		"message":           "Login successful",
		"token":             user.Token,
		"isProfileComplete": user.IsProfileComplete,
		"user":              userInfo,
	})
}

// CompleteProfile fills in the profile fields. The completion flag is derived
// by the model's save hook, never taken from the request.
func (h *UserHandler) CompleteProfile(c *fiber.Ctx) error {
	var body struct {
		Token     string `json:"token"`
		Name      string `json:"name"`
		Branch    string `json:"branch"`
		Year      string `json:"year"`
		VehicleNo string `json:"vehicleNo"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if body.Token == "" || body.Name == "" || body.Branch == "" || body.Year == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "All fields are required",
		})
	}

	user, err := h.store.GetUserByToken(body.Token)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	user.Name = body.Name
	user.Branch = body.Branch
	user.Year = body.Year
	if body.VehicleNo != "" {
		user.VehicleNo = body.VehicleNo
	}

	if err := h.store.SaveUser(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Profile completed successfully",
		"token":   body.Token,
		"user": fiber.Map{
			"name":      user.Name,
			"branch":    user.Branch,
			"year":      user.Year,
			"phone":     user.Phone,
			"vehicleNo": user.VehicleNo,
		},
	})
}

// ProfileStatus reports only the completion flag.
func (h *UserHandler) ProfileStatus(c *fiber.Ctx) error {
	user, err := h.findByTokenParam(c, "token")
	if user == nil {
		return err
	}

	return c.JSON(fiber.Map{
		"isProfileComplete": user.IsProfileComplete,
	})
}

// GetInfo returns the display fields plus accepted rides.
func (h *UserHandler) GetInfo(c *fiber.Ctx) error {
	user, err := h.findByTokenParam(c, "userid")
	if user == nil {
		return err
	}

	return c.JSON(fiber.Map{
		"name":          user.Name,
		"branch":        user.Branch,
		"year":          user.Year,
		"phone":         user.Phone,
		"vehicleNo":     user.VehicleNo,
		"acceptedRides": ridesOrEmpty(user),
	})
}

// GetUser returns the full public profile.
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.findByTokenParam(c, "token")
	if user == nil {
		return err
	}

	return c.JSON(fiber.Map{
		"token":         user.Token,
		"name":          user.Name,
		"branch":        user.Branch,
		"year":          user.Year,
		"phone":         user.Phone,
		"vehicleNo":     user.VehicleNo,
		"acceptedRides": ridesOrEmpty(user),
	})
}

// GetAcceptedRides returns just the offers recorded against the user.
func (h *UserHandler) GetAcceptedRides(c *fiber.Ctx) error {
	user, err := h.findByTokenParam(c, "token")
	if user == nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":       "Accepted rides fetched successfully",
		"acceptedRides": ridesOrEmpty(user),
	})
}

// SubmitOffer appends one driver offer to the user's accepted rides.
func (h *UserHandler) SubmitOffer(c *fiber.Ctx) error {
	token := c.Params("token")

	var body struct {
		DriverName  string `json:"driverName"`
		DriverPhone string `json:"driverPhone"`
		Location    string `json:"location"`
		Time        string `json:"time"`
		Rate        string `json:"rate"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ride := &models.AcceptedRide{
		DriverName:  body.DriverName,
		DriverPhone: body.DriverPhone,
		Location:    body.Location,
		Time:        body.Time,
		Rate:        body.Rate,
	}

	user, err := h.store.AppendAcceptedRide(token, ride)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Offer submitted successfully",
		"user": fiber.Map{
			"token":         user.Token,
			"name":          user.Name,
			"acceptedRides": ridesOrEmpty(user),
		},
	})
}

// UpdateVehicle sets the vehicle number for a user who skipped it earlier.
func (h *UserHandler) UpdateVehicle(c *fiber.Ctx) error {
	token := c.Params("token")

	var body struct {
		VehicleNo string `json:"vehicleNo"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := h.store.UpdateVehicleNo(token, body.VehicleNo)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"user": fiber.Map{
			"token":     user.Token,
			"name":      user.Name,
			"branch":    user.Branch,
			"year":      user.Year,
			"phone":     user.Phone,
			"vehicleNo": user.VehicleNo,
		},
	})
}

// findByTokenParam resolves the user for read-only routes. On a miss it has
// already written the response and returns a nil user.
func (h *UserHandler) findByTokenParam(c *fiber.Ctx, param string) (*models.User, error) {
	user, err := h.store.GetUserByToken(c.Params(param))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	if err != nil {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return user, nil
}

// ridesOrEmpty keeps acceptedRides serializing as [] instead of null.
func ridesOrEmpty(user *models.User) []models.AcceptedRide {
	if user.AcceptedRides == nil {
		return []models.AcceptedRide{}
	}
	return user.AcceptedRides
}
