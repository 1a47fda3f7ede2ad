package email

import (
	"bytes"
	"html/template"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/resendlabs/resend-go"
)

type EmailService struct {
	client       *resend.Client
	from         string
	fromName     string
	templatesDir string
	logger       *log.Logger
}

func NewEmailService() *EmailService {
	logFile, err := os.OpenFile("logs/email.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Printf("Error opening email log file: %v", err)
		return &EmailService{
			client:       resend.NewClient(os.Getenv("RESEND_API_KEY")),
			from:         os.Getenv("EMAIL_FROM_ADDRESS"),
			fromName:     os.Getenv("EMAIL_FROM_NAME"),
			templatesDir: "pkg/email/templates",
			logger:       log.New(os.Stdout, "EMAIL: ", log.LstdFlags),
		}
	}

	multiWriter := io.MultiWriter(os.Stdout, logFile)

	return &EmailService{
		client:       resend.NewClient(os.Getenv("RESEND_API_KEY")),
		from:         os.Getenv("EMAIL_FROM_ADDRESS"),
		fromName:     os.Getenv("EMAIL_FROM_NAME"),
		templatesDir: "pkg/email/templates",
		logger:       log.New(multiWriter, "EMAIL: ", log.LstdFlags),
	}
}

// SendPurchaseReceipt mails the receipt for a completed online card purchase.
func (s *EmailService) SendPurchaseReceipt(email, fullName, cardName string, amount, tip float64) error {
	s.logger.Printf("Sending purchase receipt to: %s (%s)", email, cardName)

	templateData := map[string]interface{}{
		"FullName": fullName,
		"CardName": cardName,
		"Amount":   amount,
		"Tip":      tip,
		"Total":    amount + tip,
		"Year":     time.Now().Year(),
	}

	html, err := s.parseTemplate("receipt.html", templateData)
	if err != nil {
		s.logger.Printf("Error parsing receipt template for %s: %v", email, err)
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{email},
		Subject: "Your receipt - " + cardName,
		Html:    html,
	}

	resp, err := s.client.Emails.Send(params)
	if err != nil {
		s.logger.Printf("Failed to send receipt to %s: %v", email, err)
		return err
	}

	s.logger.Printf("Successfully sent receipt to %s (ID: %s)", email, resp.Id)
	return nil
}

// SendLowBalanceNotice nudges a member whose punch card is almost used up.
func (s *EmailService) SendLowBalanceNotice(email, fullName, cardName string, remaining int) error {
	s.logger.Printf("Sending low balance notice to: %s (%d left)", email, remaining)

	templateData := map[string]interface{}{
		"FullName":  fullName,
		"CardName":  cardName,
		"Remaining": remaining,
		"Year":      time.Now().Year(),
	}

	html, err := s.parseTemplate("low-balance.html", templateData)
	if err != nil {
		s.logger.Printf("Error parsing low balance template for %s: %v", email, err)
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{email},
		Subject: "Your class card is almost empty",
		Html:    html,
	}

	resp, err := s.client.Emails.Send(params)
	if err != nil {
		s.logger.Printf("Failed to send low balance notice to %s: %v", email, err)
		return err
	}

	s.logger.Printf("Successfully sent low balance notice to %s (ID: %s)", email, resp.Id)
	return nil
}

func (s *EmailService) parseTemplate(templateName string, data interface{}) (string, error) {
	templatePath := filepath.Join(s.templatesDir, templateName)

	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		s.logger.Printf("Error parsing template %s: %v", templateName, err)
		return "", err
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		s.logger.Printf("Error executing template %s: %v", templateName, err)
		return "", err
	}

	return body.String(), nil
}
