package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bookably/booking-app/controllers"
)

// SetupAvailabilityRoutes configures the public availability endpoints.
func SetupAvailabilityRoutes(app *fiber.App) {
	availability := app.Group("/businesses/:business_id")
	availability.Get("/availability", controllers.GetAvailability)
	availability.Get("/slots", controllers.GetAvailableSlots)
	availability.Get("/appointments/upcoming", controllers.GetUpcomingAppointments)
}
