package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bookably/booking-app/controllers"
	"github.com/bookably/booking-app/middleware"
)

// SetupAuthRoutes configures login and the admin sweep trigger.
func SetupAuthRoutes(app *fiber.App) {
	app.Post("/auth/login", controllers.Login)
	app.Post("/admin/sweep", middleware.Protected(), controllers.RunSweep)
}
