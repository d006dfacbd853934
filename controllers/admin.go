package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RunSweep triggers the automatic-transition sweep on demand and returns
// the counts. Safe to call while the scheduled sweep is running: writes are
// conditional on current status, so the two passes never double-process.
func RunSweep(c *fiber.Ctx) error {
	result := Booking.SweepOnce(c.Context(), time.Now())
	status := fiber.StatusOK
	if len(result.Errors) > 0 {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(result)
}
