package models

import (
	"time"

	"gorm.io/gorm"
)

// CapacityMode controls how many concurrent appointments a resource accepts
// per overlapping interval.
type CapacityMode string

const (
	CapacitySingle CapacityMode = "single"
	CapacityMulti  CapacityMode = "multi"
)

type Business struct {
	gorm.Model
	Name      string           `json:"name"`
	Email     string           `json:"email" gorm:"unique"`
	Phone     string           `json:"phone"`
	Address   string           `json:"address"`
	Employees []Employee       `json:"employees,omitempty" gorm:"foreignKey:BusinessID"`
	Services  []Service        `json:"services,omitempty" gorm:"foreignKey:BusinessID"`
	Settings  BusinessSettings `json:"settings" gorm:"foreignKey:BusinessID"`
}

// BusinessSettings carries the booking policy knobs the engine reads. One
// row per business; missing values fall back to the defaults below.
type BusinessSettings struct {
	gorm.Model
	BusinessID               uint         `json:"business_id" gorm:"uniqueIndex"`
	TimeZone                 string       `json:"time_zone" gorm:"default:UTC"`
	CapacityMode             CapacityMode `json:"capacity_mode" gorm:"default:single"`
	DefaultCapacity          int          `json:"default_capacity" gorm:"default:1"`
	AutoConfirm              bool         `json:"auto_confirm"`
	RequireEmailConfirmation bool         `json:"require_email_confirmation"`
	EmailConfirmationTimeout int          `json:"email_confirmation_timeout" gorm:"default:30"` // minutes
	BufferTime               int          `json:"buffer_time"`                                  // minutes after each appointment
	MinBookingNotice         int          `json:"min_booking_notice"`                           // hours
	MaxAdvanceBooking        int          `json:"max_advance_booking" gorm:"default:30"`        // days
	AutoCompleteAppointments bool         `json:"auto_complete_appointments"`
	AutoCompleteGraceHours   int          `json:"auto_complete_grace_hours" gorm:"default:24"`
	DayStart                 string       `json:"day_start" gorm:"default:09:00"` // default window for open special dates
	DayEnd                   string       `json:"day_end" gorm:"default:17:00"`
}

// Location resolves the business time zone, falling back to UTC when the
// stored name is empty or bogus.
func (s BusinessSettings) Location() *time.Location {
	if s.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Capacity returns the concurrent-appointment limit before any per-rule
// override is applied.
func (s BusinessSettings) Capacity() int {
	if s.CapacityMode != CapacityMulti {
		return 1
	}
	if s.DefaultCapacity < 1 {
		return 1
	}
	return s.DefaultCapacity
}
