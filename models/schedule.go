package models

import (
	"gorm.io/gorm"
)

type DayOfWeek int

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// WeeklyRule is one recurring availability row for a resource and weekday.
// Times are "HH:MM" in the business time zone. If several rows exist for the
// same (resource, weekday), the most recently updated one wins.
type WeeklyRule struct {
	gorm.Model
	ResourceKind     ResourceKind  `json:"resource_kind" gorm:"index:idx_weekly_resource"`
	ResourceID       uint          `json:"resource_id" gorm:"index:idx_weekly_resource"`
	DayOfWeek        DayOfWeek     `json:"day_of_week"`
	StartTime        string        `json:"start_time"`
	EndTime          string        `json:"end_time"`
	IsAvailable      bool          `json:"is_available" gorm:"default:true"`
	CapacityOverride *int          `json:"capacity_override"`
	Breaks           []BreakWindow `json:"breaks,omitempty" gorm:"foreignKey:WeeklyRuleID;constraint:OnDelete:CASCADE"`
}

func (r WeeklyRule) Resource() ResourceRef {
	return ResourceRef{Kind: r.ResourceKind, ID: r.ResourceID}
}

// BreakWindow is a closed window nested inside its parent rule's hours.
// It is owned by exactly one WeeklyRule and is deleted with it.
type BreakWindow struct {
	gorm.Model
	WeeklyRuleID uint   `json:"weekly_rule_id" gorm:"index"`
	BreakStart   string `json:"break_start"`
	BreakEnd     string `json:"break_end"`
}

// SpecialDate overrides the weekly layer entirely for one calendar date.
// With IsAvailable=false the date is closed; with IsAvailable=true and no
// times the business default day window applies. Special dates carry no
// breaks.
type SpecialDate struct {
	gorm.Model
	ResourceKind     ResourceKind `json:"resource_kind" gorm:"index:idx_special_resource_date"`
	ResourceID       uint         `json:"resource_id" gorm:"index:idx_special_resource_date"`
	Date             string       `json:"date" gorm:"index:idx_special_resource_date"` // "YYYY-MM-DD"
	IsAvailable      bool         `json:"is_available"`
	StartTime        *string      `json:"start_time"`
	EndTime          *string      `json:"end_time"`
	CapacityOverride *int         `json:"capacity_override"`
	Reason           string       `json:"reason"`
}

func (s SpecialDate) Resource() ResourceRef {
	return ResourceRef{Kind: s.ResourceKind, ID: s.ResourceID}
}
