package notification

import (
	"bytes"
	"fmt"
	"net/smtp"
	"text/template"
	"time"

	"github.com/rpenumatsa/airsense-server/internal/database"
	"github.com/rpenumatsa/airsense-server/internal/protocol"
	"github.com/rpenumatsa/airsense-server/pkg/config"
)

// EmailNotifier sends email notifications for health alerts
type EmailNotifier struct {
	config *config.SMTPConfig
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg *config.SMTPConfig) *EmailNotifier {
	return &EmailNotifier{config: cfg}
}

var alertEmailTemplate = template.Must(template.New("alert").Parse(`
Air Quality Health Alert
========================

Location: {{.Zipcode}}
Severity: {{.Severity}}
Air Quality Index: {{.IndexValue}} ({{.Category}})
Dominant Pollutant: {{.DominantParameter}}
Issued: {{.CreatedAt}}
Expires: {{.ExpiresAt}}

{{.Message}}

Health guidance:
{{.HealthImpact}}

---
AirSense Notification System
`))

// SendAlertNotification sends an email for an alert message
func (e *EmailNotifier) SendAlertNotification(alert *protocol.AlertMessage) error {
	var subject string
	switch alert.Severity {
	case database.SeverityCritical:
		subject = fmt.Sprintf("🚨 CRITICAL Air Quality Alert - %s (AQI %d)", alert.Zipcode, alert.IndexValue)
	case database.SeverityHigh:
		subject = fmt.Sprintf("⚠️ Air Quality Alert - %s (AQI %d)", alert.Zipcode, alert.IndexValue)
	default:
		subject = fmt.Sprintf("Air Quality Advisory - %s (AQI %d)", alert.Zipcode, alert.IndexValue)
	}

	var buf bytes.Buffer
	if err := alertEmailTemplate.Execute(&buf, alert); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return e.sendEmail(subject, buf.String())
}

func (e *EmailNotifier) sendEmail(subject, body string) error {
	// Skip sending if SMTP is not configured
	if e.config.Username == "" || e.config.Password == "" {
		fmt.Printf("SMTP not configured, skipping email:\nSubject: %s\n%s\n", subject, body)
		return nil
	}

	message := fmt.Sprintf("From: %s\r\n", e.config.From)
	message += fmt.Sprintf("To: %s\r\n", e.config.To)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	message += "\r\n"
	message += body

	auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	err := smtp.SendMail(addr, auth, e.config.From, []string{e.config.To}, []byte(message))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	fmt.Printf("Email sent successfully: %s\n", subject)
	return nil
}
