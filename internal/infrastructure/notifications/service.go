package notifications

import "github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"

// Service fans out to the per-channel senders.
type Service struct {
	whatsapp *TwilioWhatsAppSender
	email    *SMTPSender
}

// NewService creates the composite notification service
func NewService(whatsapp *TwilioWhatsAppSender, email *SMTPSender) domain.NotificationService {
	return &Service{whatsapp: whatsapp, email: email}
}

// SendWhatsApp implements domain.NotificationService
func (s *Service) SendWhatsApp(to, message string) error {
	return s.whatsapp.Send(to, message)
}

// SendEmail implements domain.NotificationService
func (s *Service) SendEmail(to, subject, body string) error {
	return s.email.Send(to, subject, body)
}
