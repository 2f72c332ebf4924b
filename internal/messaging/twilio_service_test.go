package messaging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/wwwmplusm/goaltrack/internal/models"
	"github.com/wwwmplusm/goaltrack/internal/twiliowhatsapp"
)

func postWebhook(t *testing.T, service *TwilioService, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, DefaultWebhookPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	service.handleWebhook(rec, req)
	return rec
}

func TestTwilioWebhookForwardsInboundText(t *testing.T) {
	service := NewTwilioService(twiliowhatsapp.NewMockClient(), "")

	rec := postWebhook(t, service, url.Values{
		"From": {"whatsapp:+15551234567"},
		"Body": {"/start"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	select {
	case resp := <-service.Responses():
		if resp.From != "+15551234567" {
			t.Errorf("expected canonicalized sender, got %q", resp.From)
		}
		if resp.Body != "/start" {
			t.Errorf("expected body /start, got %q", resp.Body)
		}
	default:
		t.Fatal("expected an inbound response on the channel")
	}
}

func TestTwilioWebhookIgnoresEmptyPayload(t *testing.T) {
	service := NewTwilioService(twiliowhatsapp.NewMockClient(), "")

	rec := postWebhook(t, service, url.Values{"From": {"whatsapp:+15551234567"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	select {
	case resp := <-service.Responses():
		t.Errorf("expected no response for empty payload, got %+v", resp)
	default:
	}
}

func TestTwilioWebhookRejectsNonPost(t *testing.T) {
	service := NewTwilioService(twiliowhatsapp.NewMockClient(), "")

	req := httptest.NewRequest(http.MethodGet, DefaultWebhookPath, nil)
	rec := httptest.NewRecorder()
	service.handleWebhook(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestTwilioServiceSendMessageRecordsRecipient(t *testing.T) {
	mock := twiliowhatsapp.NewMockClient()
	service := NewTwilioService(mock, "")

	msg := models.Message{Body: "Got it. When should I check in?", Options: []string{"21:00"}}
	if err := service.SendMessage(context.Background(), "+15551234567", msg); err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	if len(mock.SentMessages) != 1 {
		t.Fatalf("expected 1 sent message, got %d", len(mock.SentMessages))
	}
	sent := mock.SentMessages[0]
	if sent.To != "+15551234567" {
		t.Errorf("expected recipient preserved, got %q", sent.To)
	}
	if !strings.Contains(sent.Body, "1. 21:00") {
		t.Errorf("expected rendered option in body, got %q", sent.Body)
	}
}

func TestTwilioServiceDefaultsWebhookAddr(t *testing.T) {
	service := NewTwilioService(twiliowhatsapp.NewMockClient(), "")
	if service.addr != DefaultWebhookAddr {
		t.Errorf("expected default addr %q, got %q", DefaultWebhookAddr, service.addr)
	}
	service = NewTwilioService(twiliowhatsapp.NewMockClient(), ":9000")
	if service.addr != ":9000" {
		t.Errorf("expected addr :9000, got %q", service.addr)
	}
}
