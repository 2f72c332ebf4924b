package messaging

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wwwmplusm/goaltrack/internal/models"
	"github.com/wwwmplusm/goaltrack/internal/twiliowhatsapp"
)

// Constants for TwilioService configuration
const (
	// DefaultWebhookAddr is the default listen address for the inbound webhook
	DefaultWebhookAddr = ":8081"
	// DefaultWebhookPath is the HTTP path Twilio posts inbound messages to
	DefaultWebhookPath = "/webhook/twilio"
	// DefaultShutdownTimeout bounds webhook server shutdown
	DefaultShutdownTimeout = 5 * time.Second
)

// TwilioService implements Service using the Twilio REST API for outbound
// messages and a form-encoded webhook listener for inbound ones.
type TwilioService struct {
	client       twiliowhatsapp.Sender
	twilioClient *twiliowhatsapp.Client // access to the full client for media fetching
	addr         string
	server       *http.Server
	responses    chan models.Response
	done         chan struct{}
}

// NewTwilioService creates a TwilioService listening for inbound webhooks on
// addr (DefaultWebhookAddr when empty).
func NewTwilioService(client twiliowhatsapp.Sender, addr string) *TwilioService {
	if addr == "" {
		addr = DefaultWebhookAddr
	}
	service := &TwilioService{
		client:    client,
		addr:      addr,
		responses: make(chan models.Response, DefaultChannelBufferSize),
		done:      make(chan struct{}),
	}
	if full, ok := client.(*twiliowhatsapp.Client); ok {
		service.twilioClient = full
		slog.Debug("TwilioService created with full client for media fetching")
	}
	return service
}

// Start launches the webhook HTTP listener.
func (s *TwilioService) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc(DefaultWebhookPath, s.handleWebhook)
	s.server = &http.Server{Addr: s.addr, Handler: mux}

	go func() {
		slog.Info("TwilioService webhook listening", "addr", s.addr, "path", DefaultWebhookPath)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("TwilioService webhook server failed", "error", err)
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
		case <-s.done:
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("TwilioService webhook shutdown error", "error", err)
		}
	}()

	return nil
}

// Stop stops the webhook listener and closes the response channel.
func (s *TwilioService) Stop() error {
	slog.Info("TwilioService Stop invoked")
	close(s.done)
	close(s.responses)
	return nil
}

// SendMessage renders the prompt with its option labels and sends it.
func (s *TwilioService) SendMessage(ctx context.Context, to string, msg models.Message) error {
	if err := msg.Validate(); err != nil {
		slog.Error("TwilioService rejecting invalid message", "error", err, "to", to)
		return err
	}
	body := RenderMessage(msg)
	slog.Debug("TwilioService SendMessage invoked", "to", to, "body_length", len(body), "options", len(msg.Options))
	if err := s.client.SendMessage(ctx, to, body); err != nil {
		slog.Error("TwilioService SendMessage error", "error", err, "to", to)
		return err
	}
	return nil
}

// Responses returns a channel of incoming response events.
func (s *TwilioService) Responses() <-chan models.Response {
	return s.responses
}

// handleWebhook parses a Twilio inbound message webhook into a Response.
func (s *TwilioService) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.Warn("TwilioService webhook form parse failed", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	response := models.Response{
		From: canonicalizeNumber(r.FormValue("From")),
		Body: r.FormValue("Body"),
		Time: time.Now().Unix(),
	}

	// Inbound voice notes arrive as media attachments.
	if numMedia, _ := strconv.Atoi(r.FormValue("NumMedia")); numMedia > 0 {
		contentType := r.FormValue("MediaContentType0")
		mediaURL := r.FormValue("MediaUrl0")
		if strings.HasPrefix(contentType, "audio/") && mediaURL != "" && s.twilioClient != nil {
			audio, err := s.twilioClient.FetchMedia(r.Context(), mediaURL)
			if err != nil {
				slog.Warn("TwilioService failed to fetch voice note", "error", err, "from", response.From)
			} else {
				response.Audio = audio
			}
		}
	}

	if response.Body == "" && len(response.Audio) == 0 {
		slog.Debug("TwilioService ignoring webhook without usable content", "from", response.From)
		w.WriteHeader(http.StatusOK)
		return
	}

	select {
	case s.responses <- response:
		slog.Debug("TwilioService inbound message forwarded", "from", response.From, "has_audio", len(response.Audio) > 0)
	case <-time.After(DefaultChannelTimeout):
		slog.Warn("TwilioService responses channel blocked, dropping message", "from", response.From)
	}

	// Twilio expects a TwiML response; an empty body means "no reply here".
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
}
