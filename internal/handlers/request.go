package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/khush256/SMRide-backend/internal/models"
	"github.com/khush256/SMRide-backend/internal/storage"
)

// RequestHandler handles ride request posting, browsing and deletion
type RequestHandler struct {
	store storage.Store
}

// NewRequestHandler creates a new ride request handler
func NewRequestHandler(store storage.Store) *RequestHandler {
	return &RequestHandler{
		store: store,
	}
}

// Create posts a new ride request for an existing user.
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var body struct {
		UserID   string `json:"userId"`
		Location string `json:"location"`
		Time     string `json:"time"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if body.UserID == "" || body.Location == "" || body.Time == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "userId, location and time are required",
		})
	}

	// Nothing is written for an unknown user.
	if _, err := h.store.GetUserByToken(body.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	req, err := h.store.CreateRequest(&models.RideRequest{
		UserID:   body.UserID,
		Location: body.Location,
		Time:     body.Time,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Request created successfully",
		"request": fiber.Map{
			"requestID": req.RequestID,
			"userId":    req.UserID,
			"location":  req.Location,
			"createdAt": req.CreatedAt,
		},
	})
}

// ListOthers returns every request not posted by the given token, newest
// first.
func (h *RequestHandler) ListOthers(c *fiber.Ctx) error {
	requests, err := h.store.GetRequestsExcluding(c.Params("token"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	out := make([]fiber.Map, 0, len(requests))
	for _, req := range requests {
		out = append(out, fiber.Map{
			"requestID": req.RequestID,
			"userId":    req.UserID,
			"location":  req.Location,
			"time":      req.Time,
			"createdAt": req.CreatedAt,
		})
	}
	return c.JSON(out)
}

// GetByID fetches one request by its public id.
func (h *RequestHandler) GetByID(c *fiber.Ctx) error {
	req, err := h.store.GetRequest(c.Params("requestID"))
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Request not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"requestID": req.RequestID,
		"userId":    req.UserID,
		"location":  req.Location,
		"createdAt": req.CreatedAt,
	})
}

// ListMine returns the caller's own requests, newest first.
func (h *RequestHandler) ListMine(c *fiber.Ctx) error {
	requests, err := h.store.GetRequestsByUser(c.Params("userID"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	out := make([]fiber.Map, 0, len(requests))
	for _, req := range requests {
		out = append(out, fiber.Map{
			"requestID": req.RequestID,
			"location":  req.Location,
			"time":      req.Time,
			"createdAt": req.CreatedAt,
		})
	}
	return c.JSON(out)
}

// SubmitOffer records a driver offer against the owner of a request: resolve
// the request, then append the offer to that user's accepted rides.
func (h *RequestHandler) SubmitOffer(c *fiber.Ctx) error {
	req, err := h.store.GetRequest(c.Params("requestID"))
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Request not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

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

	if _, err := h.store.AppendAcceptedRide(req.UserID, ride); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message":   "Offer submitted successfully",
		"requestID": req.RequestID,
		"offer":     ride,
	})
}

// Delete removes a request by id. The store reports rows affected, so a miss
// is a real 404 instead of an unconditional success.
func (h *RequestHandler) Delete(c *fiber.Ctx) error {
	deleted, err := h.store.DeleteRequest(c.Params("requestID"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if deleted == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Request not found",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Request deleted successfully",
	})
}
