package mocks

import "sync"

// MockNotificationService implements domain.NotificationService for testing.
// Sent messages are recorded for assertions.
type MockNotificationService struct {
	SendWhatsAppFunc func(to, message string) error
	SendEmailFunc    func(to, subject, body string) error

	mu           sync.Mutex
	WhatsAppSent []SentMessage
	EmailsSent   []SentEmail
}

// SentMessage is one recorded WhatsApp delivery
type SentMessage struct {
	To      string
	Message string
}

// SentEmail is one recorded email delivery
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// NewMockNotificationService creates a new MockNotificationService with default behaviors
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

func (m *MockNotificationService) SendWhatsApp(to, message string) error {
	m.mu.Lock()
	m.WhatsAppSent = append(m.WhatsAppSent, SentMessage{To: to, Message: message})
	m.mu.Unlock()
	if m.SendWhatsAppFunc != nil {
		return m.SendWhatsAppFunc(to, message)
	}
	return nil
}

func (m *MockNotificationService) SendEmail(to, subject, body string) error {
	m.mu.Lock()
	m.EmailsSent = append(m.EmailsSent, SentEmail{To: to, Subject: subject, Body: body})
	m.mu.Unlock()
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(to, subject, body)
	}
	return nil
}
