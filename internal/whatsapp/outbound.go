package whatsapp

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Notifier sends a WhatsApp text to a phone number.
type Notifier interface {
	Send(ctx context.Context, toPhone, body string) error
}

type TwilioClient struct {
	AccountSID  string
	AuthToken   string
	FromWA      string
	CountryCode string
	BaseURL     string
	HTTP        *http.Client
}

func NewTwilio(sid, token, from, countryCode string) *TwilioClient {
	return &TwilioClient{
		AccountSID:  sid,
		AuthToken:   token,
		FromWA:      from,
		CountryCode: countryCode,
		BaseURL:     "https://api.twilio.com",
		HTTP:        &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TwilioClient) Configured() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.FromWA != ""
}

func (t *TwilioClient) Send(ctx context.Context, toPhone, body string) error {
	form := url.Values{}
	form.Set("From", t.FromWA)
	form.Set("To", "whatsapp:+"+NormalizePhone(toPhone, t.CountryCode))
	form.Set("Body", body)

	endpoint := t.BaseURL + "/2010-04-01/Accounts/" + t.AccountSID + "/Messages.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(t.AccountSID, t.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := t.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &twilioHTTPError{Status: res.StatusCode, Body: string(body)}
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

type twilioHTTPError struct {
	Status int
	Body   string
}

func (e *twilioHTTPError) Error() string {
	return "twilio send failed"
}

// LogNotifier stands in for Twilio when it is not configured.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) Send(_ context.Context, toPhone, body string) error {
	n.Log.Info("whatsapp notification (twilio not configured)", zap.String("to", toPhone), zap.String("body", body))
	return nil
}
