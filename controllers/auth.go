package controllers

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookably/booking-app/db"
	"github.com/bookably/booking-app/models"
	"github.com/bookably/booking-app/utils"
)

// Login authenticates a staff member and issues the JWT the protected
// routes require. Account management itself lives outside this service.
func Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	var employee models.Employee
	if err := db.DB.Where("email = ?", input.Email).First(&employee).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{Message: "Invalid credentials"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(employee.Password), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{Message: "Invalid credentials"})
	}
	if !employee.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{Message: "Account is deactivated"})
	}

	claims := jwt.MapClaims{
		"id":          employee.ID,
		"business_id": employee.BusinessID,
		"role":        employee.Role,
		"exp":         time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	secret := os.Getenv("JWT_SECRET")
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to issue token",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"token": signed,
		"employee": fiber.Map{
			"id":          employee.ID,
			"name":        employee.Name,
			"business_id": employee.BusinessID,
			"role":        employee.Role,
		},
	})
}
