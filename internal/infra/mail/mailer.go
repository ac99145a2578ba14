package mail

import (
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"strings"

	"auraweb-intake/internal/domain/submissions"
)

type Sender interface {
	Send(to, subject, body string) error
}

// Default is swapped for an SMTP sender by main when SMTP_HOST is set.
var Default Sender = Disabled{}

type Disabled struct{}

func (Disabled) Send(to, subject, _ string) error {
	slog.Debug("Mail disabled, skipping", "to", to, "subject", subject)
	return nil
}

type SMTP struct {
	Host     string
	Port     string
	From     string
	Password string
}

func (s SMTP) Send(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.From, s.Password, s.Host)

	if err := smtp.SendMail(s.Host+":"+s.Port, auth, s.From, []string{oneLine(to)}, Message(s.From, to, subject, body)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// Message renders a plain-text mail. Header values are folded onto one
// line and Q-encoded when they are not ASCII.
func Message(from, to, subject, body string) []byte {
	return []byte("Subject: " + mime.QEncoding.Encode("utf-8", oneLine(subject)) + "\r\n" +
		"From: " + oneLine(from) + "\r\n" +
		"To: " + oneLine(to) + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// oneLine keeps customer-supplied text from opening new header lines.
func oneLine(v string) string {
	return strings.TrimSpace(lineBreaks.Replace(v))
}

func CustomerConfirmation(s submissions.Submission, appURL string) (subject, body string) {
	subject = "Your Website Request Received - " + oneLine(s.BusinessName)

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", s.BusinessName)
	b.WriteString("We've received your website development request. Our team is excited to bring your vision to life!\n\n")
	b.WriteString("Submission details:\n")
	fmt.Fprintf(&b, "  Package:       %s\n", strings.ToUpper(s.PackageID))
	fmt.Fprintf(&b, "  Business type: %s\n", s.BusinessType)
	fmt.Fprintf(&b, "  Contact:       %s\n", s.Phone)
	fmt.Fprintf(&b, "  Submission ID: %s\n", s.ID)
	fmt.Fprintf(&b, "  Deposit (50%%): %d %s\n\n", s.DepositAmount, submissions.Currency)
	b.WriteString("What happens next?\n")
	b.WriteString("  1. Review (24 hours): our team reviews your requirements\n")
	b.WriteString("  2. Payment invoice: you receive a payment link for the 50% deposit\n")
	b.WriteString("  3. Development starts once payment is confirmed\n")
	b.WriteString("  4. Delivery within the agreed timeline\n\n")
	if appURL != "" {
		fmt.Fprintf(&b, "Track your order: %s/track?order_id=%s\n\n", appURL, s.ID)
	}
	b.WriteString("AuraWeb Solutions - Addis Ababa, Ethiopia\n")
	return subject, b.String()
}

func AdminAlert(s submissions.Submission, appURL string) (subject, body string) {
	subject = "New Website Request: " + oneLine(s.BusinessName)

	email := "Not provided"
	if s.Email != nil {
		email = *s.Email
	}
	services := "None"
	if len(s.Services) > 0 {
		services = strings.Join(s.Services, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Business name:  %s\n", s.BusinessName)
	fmt.Fprintf(&b, "Package:        %s\n", strings.ToUpper(s.PackageID))
	fmt.Fprintf(&b, "Business type:  %s\n", s.BusinessType)
	fmt.Fprintf(&b, "Phone:          %s\n", s.Phone)
	fmt.Fprintf(&b, "Email:          %s\n", email)
	fmt.Fprintf(&b, "Address:        %s\n", s.Address)
	fmt.Fprintf(&b, "About:          %s\n", s.AboutUs)
	fmt.Fprintf(&b, "Services:       %s\n", services)
	fmt.Fprintf(&b, "Design:         %s, %s, %s\n", s.ThemeStyle, s.PrimaryColor, s.Language)
	fmt.Fprintf(&b, "Submission ID:  %s\n", s.ID)
	if appURL != "" {
		fmt.Fprintf(&b, "\nOpen the dashboard: %s/admin\n", appURL)
	}
	return subject, b.String()
}

func PaymentRequest(s submissions.Submission, link string, amount int64) (subject, body string) {
	subject = "Payment Request - " + oneLine(s.BusinessName) + " Website"

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", s.BusinessName)
	b.WriteString("We've reviewed your requirements and are ready to start building your website.\n\n")
	fmt.Fprintf(&b, "50%% deposit due: %d %s\n", amount, submissions.Currency)
	fmt.Fprintf(&b, "Pay securely here: %s\n\n", link)
	fmt.Fprintf(&b, "Package:       %s\n", strings.ToUpper(s.PackageID))
	fmt.Fprintf(&b, "Submission ID: %s\n\n", s.ID)
	b.WriteString("Development begins immediately after payment confirmation.\n")
	return subject, b.String()
}

// NotifyPaymentRequest mails the checkout link to the customer, if we have an address.
func NotifyPaymentRequest(s submissions.Submission, link string, amount int64) {
	if s.Email == nil || *s.Email == "" {
		return
	}
	subject, body := PaymentRequest(s, link, amount)
	if err := Default.Send(*s.Email, subject, body); err != nil {
		slog.Warn("Payment request mail failed", "submission_id", s.ID, "error", err)
	}
}

// NotifySubmission sends the customer confirmation (when an email was
// given) and the admin alert. Failures are logged only.
func NotifySubmission(s submissions.Submission, adminEmail, appURL string) {
	if s.Email != nil && *s.Email != "" {
		subject, body := CustomerConfirmation(s, appURL)
		if err := Default.Send(*s.Email, subject, body); err != nil {
			slog.Warn("Customer confirmation failed", "submission_id", s.ID, "error", err)
		}
	}
	if adminEmail != "" {
		subject, body := AdminAlert(s, appURL)
		if err := Default.Send(adminEmail, subject, body); err != nil {
			slog.Warn("Admin alert failed", "submission_id", s.ID, "error", err)
		}
	}
}
