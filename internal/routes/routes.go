package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/khush256/SMRide-backend/internal/handlers"
	"github.com/khush256/SMRide-backend/internal/services"
	"github.com/khush256/SMRide-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, sms *services.TwilioService) {
	userHandler := handlers.NewUserHandler(store, sms)
	requestHandler := handlers.NewRequestHandler(store)

	api := app.Group("/api")

	// User flow: OTP login, profile, offers. The literal segments on the
	// PATCH routes keep offer and vehicle updates from sharing one pattern.
	user := api.Group("/user")
	user.Post("/send-otp", userHandler.SendOTP)
	user.Post("/verify-otp", userHandler.VerifyOTP)
	user.Post("/complete-profile", userHandler.CompleteProfile)
	user.Get("/profile-status/:token", userHandler.ProfileStatus)
	user.Get("/info/:userid", userHandler.GetInfo)
	user.Get("/accepted-rides/:token", userHandler.GetAcceptedRides)
	user.Patch("/offer/:token", userHandler.SubmitOffer)
	user.Patch("/vehicle/:token", userHandler.UpdateVehicle)
	user.Get("/:token", userHandler.GetUser)

	// Ride request flow
	request := api.Group("/request")
	request.Post("/", requestHandler.Create)
	request.Get("/myrequest/:userID", requestHandler.ListMine)
	request.Get("/detail/:requestID", requestHandler.GetByID)
	request.Put("/offer/:requestID", requestHandler.SubmitOffer)
	request.Delete("/:requestID", requestHandler.Delete)
	request.Get("/:token", requestHandler.ListOthers)
}
