package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/bookably/booking-app/booking"
	"github.com/bookably/booking-app/models"
	"github.com/bookably/booking-app/utils"
)

// CreateAppointment books a concrete slot through the conflict guard. On a
// lost race the client gets 409 and must pick another slot; the server never
// substitutes one.
func CreateAppointment(c *fiber.Ctx) error {
	var req booking.ReserveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	appt, err := Booking.Reserve(c.Context(), req)
	if err != nil {
		return utils.FailWith(c, "Failed to book appointment", err)
	}

	notifyClient(appt, "Your appointment request has been received.")
	return c.Status(fiber.StatusCreated).JSON(appt)
}

// GetAppointment fetches one appointment by numeric id.
func GetAppointment(c *fiber.Ctx) error {
	id, _ := c.ParamsInt("id")
	if id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{Message: "Invalid appointment id"})
	}
	appt, err := Booking.Get(c.Context(), uint(id))
	if err != nil {
		return utils.FailWith(c, "Appointment not found", err)
	}
	return c.JSON(appt)
}

// GetAppointmentByReference fetches one appointment by its booking reference.
func GetAppointmentByReference(c *fiber.Ctx) error {
	ref := c.Params("reference")
	appt, err := Booking.GetByReference(c.Context(), ref)
	if err != nil {
		return utils.FailWith(c, "Appointment not found", err)
	}
	return c.JSON(appt)
}

// GetUpcomingAppointments lists pending/confirmed appointments for a
// resource from today on.
func GetUpcomingAppointments(c *fiber.Ctx) error {
	businessID, _ := c.ParamsInt("business_id")
	if businessID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{Message: "Invalid business id"})
	}
	ref := models.BusinessRef(uint(businessID))
	if employeeID := employeeParam(c); employeeID != nil {
		ref = models.EmployeeRef(*employeeID)
	}

	limit := c.QueryInt("limit", 20)
	appts, err := Booking.Upcoming(c.Context(), ref, limit)
	if err != nil {
		return utils.FailWith(c, "Failed to fetch appointments", err)
	}
	return c.JSON(fiber.Map{
		"appointments": appts,
		"count":        len(appts),
	})
}

// ConfirmAppointment moves a pending appointment to confirmed.
func ConfirmAppointment(c *fiber.Ctx) error {
	return applyTransition(c, func(id uint) (*booking.TransitionResult, error) {
		return Booking.Confirm(c.Context(), id)
	}, "Your appointment is confirmed.")
}

// CancelAppointment cancels a pending or confirmed appointment and frees
// its slot.
func CancelAppointment(c *fiber.Ctx) error {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&body)

	return applyTransition(c, func(id uint) (*booking.TransitionResult, error) {
		return Booking.Cancel(c.Context(), id, body.Reason)
	}, "Your appointment has been cancelled.")
}

// CompleteAppointment closes out a confirmed appointment.
func CompleteAppointment(c *fiber.Ctx) error {
	return applyTransition(c, func(id uint) (*booking.TransitionResult, error) {
		return Booking.Complete(c.Context(), id)
	}, "")
}

// NoShowAppointment marks a confirmed appointment whose client never came.
func NoShowAppointment(c *fiber.Ctx) error {
	return applyTransition(c, func(id uint) (*booking.TransitionResult, error) {
		return Booking.NoShow(c.Context(), id)
	}, "")
}

// RescheduleAppointment moves an appointment to a new slot. The new slot is
// validated exactly like a fresh booking; on failure the original stays.
func RescheduleAppointment(c *fiber.Ctx) error {
	id, _ := c.ParamsInt("id")
	if id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{Message: "Invalid appointment id"})
	}

	var body struct {
		Date      string `json:"date"`
		StartTime string `json:"start_time"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	appt, err := Booking.Reschedule(c.Context(), uint(id), body.Date, body.StartTime)
	if err != nil {
		return utils.FailWith(c, "Failed to reschedule appointment", err)
	}

	notifyClient(appt, "Your appointment has been rescheduled.")
	return c.JSON(appt)
}

func applyTransition(c *fiber.Ctx, fn func(id uint) (*booking.TransitionResult, error), mailHeadline string) error {
	id, _ := c.ParamsInt("id")
	if id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{Message: "Invalid appointment id"})
	}

	result, err := fn(uint(id))
	if err != nil {
		return utils.FailWith(c, "Transition rejected", err)
	}

	if mailHeadline != "" {
		notifyClient(result.Appointment, mailHeadline)
	}
	return c.JSON(result)
}

// notifyClient sends the transactional mail for a lifecycle event. Delivery
// failure never fails the request.
func notifyClient(appt *models.Appointment, headline string) {
	if appt.ClientEmail == "" {
		return
	}
	body := utils.AppointmentMailBody(headline, appt, appt.Service.Name)
	if err := utils.SendEmail(appt.ClientEmail, "Appointment update", body); err != nil {
		log.Printf("Failed to send appointment mail for %s: %v", appt.Reference, err)
	}
}
