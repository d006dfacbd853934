package db

import (
	"fmt"
	"log"

	"github.com/bookably/booking-app/models"
)

func Migrate() {
	// Initialize DB connection
	Init()

	// Run AutoMigrate only when explicitly called
	err := DB.AutoMigrate(
		&models.Business{},
		&models.BusinessSettings{},
		&models.Employee{},
		&models.Service{},
		&models.WeeklyRule{},
		&models.BreakWindow{},
		&models.SpecialDate{},
		&models.Appointment{},
	)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	fmt.Println("✅ Migrations applied successfully!")
}
