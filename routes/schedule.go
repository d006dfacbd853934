package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bookably/booking-app/controllers"
	"github.com/bookably/booking-app/middleware"
)

// SetupScheduleRoutes configures the rule administration routes.
func SetupScheduleRoutes(app *fiber.App) {
	weekly := app.Group("/weekly-rules")
	weekly.Get("/", controllers.GetWeeklyRules)
	weekly.Post("/", middleware.Protected(), controllers.CreateWeeklyRule)
	weekly.Patch("/:id", middleware.Protected(), controllers.UpdateWeeklyRule)
	weekly.Delete("/:id", middleware.Protected(), controllers.DeleteWeeklyRule)

	special := app.Group("/special-dates")
	special.Get("/", controllers.GetSpecialDates)
	special.Post("/", middleware.Protected(), controllers.CreateSpecialDate)
	special.Delete("/:id", middleware.Protected(), controllers.DeleteSpecialDate)
}
