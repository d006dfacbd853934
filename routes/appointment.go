package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bookably/booking-app/controllers"
	"github.com/bookably/booking-app/middleware"
)

// SetupAppointmentRoutes configures all appointment related routes.
func SetupAppointmentRoutes(app *fiber.App) {
	appointment := app.Group("/appointments")
	appointment.Post("/", controllers.CreateAppointment)
	appointment.Get("/ref/:reference", controllers.GetAppointmentByReference)
	appointment.Get("/:id", controllers.GetAppointment)
	appointment.Post("/:id/confirm", controllers.ConfirmAppointment)
	appointment.Post("/:id/cancel", controllers.CancelAppointment)
	appointment.Post("/:id/complete", middleware.Protected(), controllers.CompleteAppointment)
	appointment.Post("/:id/no-show", middleware.Protected(), controllers.NoShowAppointment)
	appointment.Patch("/:id/reschedule", controllers.RescheduleAppointment)
}
