package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// LowStockItem is one product listed in a low stock alert
type LowStockItem struct {
	Name      string
	Code      string
	Remaining int
	AlertAt   int
}

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config, send: smtp.SendMail}
}

// Enabled reports whether an SMTP host is configured
func (s *EmailService) Enabled() bool {
	return s.config.SMTPHost != ""
}

// SendLowStockAlert tells the shop owner which products reached their alert level
func (s *EmailService) SendLowStockAlert(toEmail, storeName string, items []LowStockItem) error {
	if len(items) == 0 {
		return nil
	}

	htmlContent, err := s.renderLowStockEmail(storeName, items)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Low stock at %s: %d product(s)", storeName, len(items))
	message := s.buildHTMLEmail(toEmail, subject, htmlContent)

	return s.sendEmail(toEmail, message)
}

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := s.send(addr, auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// buildHTMLEmail builds an HTML email message
func (s *EmailService) buildHTMLEmail(to, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		to,
		subject,
	)

	return []byte(headers + htmlBody)
}

var lowStockTmpl = template.Must(template.New("low_stock").Parse(lowStockTemplate))

func (s *EmailService) renderLowStockEmail(storeName string, items []LowStockItem) (string, error) {
	data := struct {
		StoreName string
		Items     []LowStockItem
	}{
		StoreName: storeName,
		Items:     items,
	}

	var buf bytes.Buffer
	if err := lowStockTmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// lowStockTemplate is the HTML template for low stock alerts
const lowStockTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Low Stock</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 12px; border-collapse: collapse;">
        <tr>
            <td style="background-color: #1a1a2e; padding: 30px; text-align: center;">
                <h1 style="color: #ffffff; margin: 0; font-size: 24px;">{{.StoreName}}</h1>
            </td>
        </tr>
        <tr>
            <td style="padding: 30px;">
                <p style="color: #4a5568; font-size: 16px; margin: 0 0 20px 0;">These products are running low:</p>
                <table role="presentation" style="width: 100%; border-collapse: collapse;">
                    <tr>
                        <th style="text-align: left; padding: 8px; border-bottom: 1px solid #e2e8f0;">Product</th>
                        <th style="text-align: left; padding: 8px; border-bottom: 1px solid #e2e8f0;">Code</th>
                        <th style="text-align: right; padding: 8px; border-bottom: 1px solid #e2e8f0;">Remaining</th>
                        <th style="text-align: right; padding: 8px; border-bottom: 1px solid #e2e8f0;">Alert at</th>
                    </tr>
                    {{range .Items}}
                    <tr>
                        <td style="padding: 8px;">{{.Name}}</td>
                        <td style="padding: 8px;">{{.Code}}</td>
                        <td style="padding: 8px; text-align: right;">{{.Remaining}}</td>
                        <td style="padding: 8px; text-align: right;">{{.AlertAt}}</td>
                    </tr>
                    {{end}}
                </table>
            </td>
        </tr>
    </table>
</body>
</html>
`
