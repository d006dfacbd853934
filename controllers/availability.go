package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bookably/booking-app/models"
	"github.com/bookably/booking-app/utils"
)

func employeeParam(c *fiber.Ctx) *uint {
	id := c.QueryInt("employee_id")
	if id <= 0 {
		return nil
	}
	u := uint(id)
	return &u
}

// GetAvailability returns the resolved open intervals for a resource/date.
func GetAvailability(c *fiber.Ctx) error {
	businessID, _ := c.ParamsInt("business_id")
	date := c.Query("date")
	if businessID <= 0 || date == "" {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "business_id and date are required",
		})
	}

	intervals, err := Booking.ResolveAvailability(c.Context(), uint(businessID), employeeParam(c), date)
	if err != nil {
		return utils.FailWith(c, "Failed to resolve availability", err)
	}

	return c.JSON(fiber.Map{
		"business_id": businessID,
		"date":        date,
		"open":        intervals,
	})
}

// GetAvailableSlots returns bookable start times for a service on a date.
// Generated sets are served from the short-TTL cache when occupancy has not
// changed since the last computation.
func GetAvailableSlots(c *fiber.Ctx) error {
	businessID, _ := c.ParamsInt("business_id")
	serviceID := c.QueryInt("service_id")
	date := c.Query("date")
	if businessID <= 0 || serviceID <= 0 || date == "" {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "business_id, service_id and date are required",
		})
	}

	employeeID := employeeParam(c)
	ref := models.BusinessRef(uint(businessID))
	if employeeID != nil {
		ref = models.EmployeeRef(*employeeID)
	}

	if cached, ok := Slots.Get(c.Context(), ref, uint(serviceID), date); ok {
		return c.JSON(fiber.Map{
			"slots":  cached,
			"date":   date,
			"cached": true,
		})
	}

	slots, err := Booking.GenerateSlots(c.Context(), uint(businessID), employeeID, uint(serviceID), date)
	if err != nil {
		return utils.FailWith(c, "Failed to generate slots", err)
	}

	Slots.Set(c.Context(), ref, uint(serviceID), date, slots)
	return c.JSON(fiber.Map{
		"slots": slots,
		"date":  date,
	})
}
