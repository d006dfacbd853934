package utils

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/bookably/booking-app/models"
)

// SendEmail delivers one HTML mail through the configured SMTP relay.
// Delivery is a collaborator concern; callers treat failures as non-fatal.
func SendEmail(to, subject, body string) error {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("EMAIL_USER"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		os.Getenv("SMTP_HOST"),
		port,
		os.Getenv("EMAIL_USER"),
		os.Getenv("EMAIL_PASS"),
	)

	return d.DialAndSend(m)
}

// AppointmentMailBody renders the standard appointment notification body.
func AppointmentMailBody(headline string, appt *models.Appointment, serviceName string) string {
	return fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>%s</p>
		<ul>
			<li><strong>Service:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Time:</strong> %s - %s</li>
			<li><strong>Status:</strong> %s</li>
			<li><strong>Booking reference:</strong> %s</li>
		</ul>
		<p>Best regards,<br>Your Booking Team</p>
	`, appt.ClientName, headline, serviceName, appt.Date, appt.StartTime, appt.EndTime, appt.Status, appt.Reference)
}
