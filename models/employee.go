package models

import (
	"gorm.io/gorm"
)

type Employee struct {
	gorm.Model
	BusinessID uint      `json:"business_id" gorm:"index"`
	Business   Business  `json:"business,omitempty" gorm:"foreignKey:BusinessID"`
	Name       string    `json:"name"`
	Email      string    `json:"email" gorm:"unique"`
	Password   string    `json:"password,omitempty"`
	Role       string    `json:"role" gorm:"default:staff"` // "owner" or "staff"
	IsActive   bool      `json:"is_active" gorm:"default:true"`
	Services   []Service `json:"services,omitempty" gorm:"many2many:employee_services"`
}
