package models

import (
	"gorm.io/gorm"
)

type Service struct {
	gorm.Model
	BusinessID   uint     `json:"business_id" gorm:"index"`
	Business     Business `json:"business,omitempty" gorm:"foreignKey:BusinessID"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Duration     int      `json:"duration"`      // minutes
	SlotInterval int      `json:"slot_interval"` // stepping granularity in minutes; 0 means duration
	Cost         float64  `json:"cost"`
	IsActive     bool     `json:"is_active" gorm:"default:true"`
}

// Step returns the slot stepping granularity in minutes.
func (s Service) Step() int {
	if s.SlotInterval > 0 {
		return s.SlotInterval
	}
	return s.Duration
}
