package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

// IsTerminal reports whether no further transitions are allowed.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// Cancellation reasons written by the automatic triggers.
const (
	CancelReasonConfirmationExpired = "email confirmation window expired"
	CancelReasonAutoCancelled       = "cancelled automatically after scheduled end"
)

// Appointment is one committed booking. Date is "YYYY-MM-DD", StartTime and
// EndTime are "HH:MM" in the business time zone. EndTime is computed from
// the service duration at creation and only changes on reschedule.
// Appointments are never deleted; cancellation is a status.
type Appointment struct {
	gorm.Model
	Reference              string            `json:"reference" gorm:"uniqueIndex;size:36"`
	BusinessID             uint              `json:"business_id" gorm:"index:idx_appt_resource_date"`
	EmployeeID             *uint             `json:"employee_id" gorm:"index:idx_appt_resource_date"`
	ServiceID              uint              `json:"service_id"`
	Service                Service           `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	Date                   string            `json:"date" gorm:"index:idx_appt_resource_date"`
	StartTime              string            `json:"start_time"`
	EndTime                string            `json:"end_time"`
	Status                 AppointmentStatus `json:"status" gorm:"index"`
	ClientName             string            `json:"client_name"`
	ClientEmail            string            `json:"client_email"`
	ClientPhone            string            `json:"client_phone"`
	CancellationReason     string            `json:"cancellation_reason,omitempty"`
	CompletedAutomatically bool              `json:"completed_automatically"`
	ConfirmedAt            *time.Time        `json:"confirmed_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = StatusPending
	}
	if a.Reference == "" {
		a.Reference = uuid.NewString()
	}
	return nil
}

// ResourceRef returns the key the appointment is counted against: the
// employee when one is assigned, otherwise the business as a whole.
func (a *Appointment) ResourceRef() ResourceRef {
	if a.EmployeeID != nil && *a.EmployeeID != 0 {
		return EmployeeRef(*a.EmployeeID)
	}
	return BusinessRef(a.BusinessID)
}

// CanTransition validates a lifecycle move without persisting it.
func (a *Appointment) CanTransition(to AppointmentStatus) error {
	switch a.Status {
	case StatusPending:
		if to != StatusConfirmed && to != StatusCancelled {
			return fmt.Errorf("invalid transition from pending to %s", to)
		}
	case StatusConfirmed:
		if to != StatusCompleted && to != StatusCancelled && to != StatusNoShow {
			return fmt.Errorf("invalid transition from confirmed to %s", to)
		}
	default:
		return fmt.Errorf("no transitions allowed from %s", a.Status)
	}
	return nil
}

// EndsAt resolves the appointment's scheduled end as an instant in loc.
func (a *Appointment) EndsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", a.Date+" "+a.EndTime, loc)
}
