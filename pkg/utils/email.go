package utils

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"
)

var (
	emailFrom     = os.Getenv("EMAIL_FROM")
	emailPassword = os.Getenv("EMAIL_PASSWORD")
	smtpHost      = os.Getenv("SMTP_HOST")
	smtpPort      = os.Getenv("SMTP_PORT")
	companyName   = "Courease"
)

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #4CAF50; margin: 0;">Courease</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
			<p>© 2025 Courease. All rights reserved.</p>
		</div>
	</div>
</body>
</html>
`

func sendEmail(to []string, subject, body string) error {
	if emailFrom == "" || emailPassword == "" || smtpHost == "" || smtpPort == "" {
		return fmt.Errorf("email configuration not set")
	}

	// Headers
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", companyName, emailFrom)
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	// Build message
	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + body

	auth := smtp.PlainAuth("", emailFrom, emailPassword, smtpHost)
	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)

	return smtp.SendMail(addr, auth, emailFrom, to, []byte(message))
}

// SendPaymentConfirmation emails the user once their booking payment clears.
func SendPaymentConfirmation(to, userName, fieldName, date, startTime, endTime string, amount float64) error {
	subject := fmt.Sprintf("Payment received for your %s booking", fieldName)

	body := emailHeader + fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>We have received your payment and your booking is now confirmed.</p>
		<div style="background-color: #f9f9f9; padding: 15px; margin: 20px 0;">
			<p style="margin: 0;"><strong>Field:</strong> %s</p>
			<p style="margin: 0;"><strong>Date:</strong> %s</p>
			<p style="margin: 0;"><strong>Time:</strong> %s - %s</p>
			<p style="margin: 0;"><strong>Amount paid:</strong> %.0f</p>
		</div>
		<p>See you on the field!</p>
`, userName, fieldName, date, startTime, endTime, amount) + emailFooter

	return sendEmail([]string{to}, subject, body)
}
