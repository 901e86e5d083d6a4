package services

import (
	"fmt"
	"log"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioService sends OTP SMS messages. It is optional: when credentials are
// missing the app runs without it and the OTP is only returned in the API
// response.
type TwilioService struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioService creates a new Twilio service instance
func NewTwilioService() (*TwilioService, error) {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_PHONE_NUMBER")

	if accountSid == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &TwilioService{
		client: client,
		from:   from,
	}, nil
}

// SendOTP delivers a one-time passcode to the given phone number.
func (t *TwilioService) SendOTP(phone, code string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo("+91" + phone)
	params.SetBody(fmt.Sprintf("%s is your OTP for user ID %s. Please enter the OTP to proceed and do not share it with anyone.", code, phone))

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send OTP SMS: %v", err)
		return err
	}

	log.Printf("✅ OTP SMS sent! SID: %s", *resp.Sid)
	return nil
}
