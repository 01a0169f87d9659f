package notifications

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioWhatsAppSender delivers messages over the Twilio WhatsApp channel.
type TwilioWhatsAppSender struct {
	client *twilio.RestClient
	from   string
	logger zerolog.Logger
}

// NewTwilioWhatsAppSender creates a new Twilio WhatsApp sender
func NewTwilioWhatsAppSender(accountSID, authToken, fromNumber string, logger zerolog.Logger) *TwilioWhatsAppSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioWhatsAppSender{
		client: client,
		from:   fromNumber,
		logger: logger,
	}
}

// Send delivers a WhatsApp message to the given phone number.
func (t *TwilioWhatsAppSender) Send(to, message string) error {
	// Without credentials (local development) log instead of sending.
	if t.from == "" {
		t.logger.Info().Str("to", to).Msg("whatsapp sender not configured, message dropped")
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(whatsAppAddress(to))
	params.SetFrom(whatsAppAddress(t.from))
	params.SetBody(message)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send WhatsApp message: %w", err)
	}
	return nil
}

// whatsAppAddress prefixes a number with the channel scheme Twilio expects.
func whatsAppAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
