package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/wwwmplusm/goaltrack/internal/models"
	"github.com/wwwmplusm/goaltrack/internal/whatsapp"
	"go.mau.fi/whatsmeow/types/events"
)

// Constants for WhatsAppService configuration
const (
	// DefaultChannelBufferSize defines the default buffer size for the response channel
	DefaultChannelBufferSize = 100
	// DefaultChannelTimeout defines the default timeout for non-blocking channel operations
	DefaultChannelTimeout = 1 * time.Second
)

// WhatsAppService implements Service using the Whatsmeow-based whatsapp client.
type WhatsAppService struct {
	client    whatsapp.Sender
	waClient  *whatsapp.Client // access to the underlying client for event handling
	responses chan models.Response
	done      chan struct{}
}

// NewWhatsAppService creates a new WhatsAppService wrapping the given Sender.
func NewWhatsAppService(client whatsapp.Sender) *WhatsAppService {
	service := &WhatsAppService{
		client:    client,
		responses: make(chan models.Response, DefaultChannelBufferSize),
		done:      make(chan struct{}),
	}

	// If the client is a full Client (not just an interface), store it for event handling
	if waClient, ok := client.(*whatsapp.Client); ok {
		service.waClient = waClient
		slog.Debug("WhatsAppService created with full client for event handling")
	} else {
		slog.Debug("WhatsAppService created with interface client (likely mock)")
	}

	return service
}

// Start begins background event processing.
func (s *WhatsAppService) Start(ctx context.Context) error {
	slog.Debug("WhatsAppService Start invoked")
	if s.waClient != nil {
		go s.handleEvents(ctx)
		slog.Debug("WhatsAppService event handler started")
	} else {
		slog.Debug("WhatsAppService no full client available, skipping event handling (likely mock)")
	}
	return nil
}

// Stop stops background processing.
func (s *WhatsAppService) Stop() error {
	slog.Info("WhatsAppService Stop invoked")
	close(s.done)
	close(s.responses)
	return nil
}

// SendMessage renders the prompt with its option labels and sends it.
func (s *WhatsAppService) SendMessage(ctx context.Context, to string, msg models.Message) error {
	if err := msg.Validate(); err != nil {
		slog.Error("WhatsAppService rejecting invalid message", "error", err, "to", to)
		return err
	}
	body := RenderMessage(msg)
	slog.Debug("WhatsAppService SendMessage invoked", "to", to, "body_length", len(body), "options", len(msg.Options))
	if err := s.client.SendMessage(ctx, to, body); err != nil {
		slog.Error("WhatsAppService SendMessage error", "error", err, "to", to)
		return err
	}
	return nil
}

// Responses returns a channel of incoming response events.
func (s *WhatsAppService) Responses() <-chan models.Response {
	return s.responses
}

// handleEvents registers a whatsmeow event handler that feeds incoming
// messages into the responses channel.
func (s *WhatsAppService) handleEvents(ctx context.Context) {
	if s.waClient == nil || s.waClient.GetClient() == nil {
		slog.Error("WhatsAppService handleEvents: no client available")
		return
	}

	s.waClient.GetClient().AddEventHandler(func(evt interface{}) {
		switch v := evt.(type) {
		case *events.Message:
			s.handleIncomingMessage(ctx, v)
		default:
			// Ignore receipts, presence and connection events.
		}
	})

	slog.Debug("WhatsAppService event handler registered")
	<-ctx.Done()
	slog.Debug("WhatsAppService handleEvents stopping due to context cancellation")
}

// handleIncomingMessage processes incoming text and voice note messages.
func (s *WhatsAppService) handleIncomingMessage(ctx context.Context, evt *events.Message) {
	if evt.Message == nil {
		return
	}

	response := models.Response{
		From: canonicalizeNumber(evt.Info.Sender.User),
		Time: evt.Info.Timestamp.Unix(),
	}

	switch {
	case evt.Message.GetConversation() != "":
		response.Body = evt.Message.GetConversation()
	case evt.Message.GetExtendedTextMessage().GetText() != "":
		response.Body = evt.Message.GetExtendedTextMessage().GetText()
	case evt.Message.GetAudioMessage() != nil:
		audio, err := s.waClient.DownloadAudio(ctx, evt.Message.GetAudioMessage())
		if err != nil {
			slog.Warn("WhatsAppService failed to download voice note", "error", err, "from", response.From)
			return
		}
		response.Audio = audio
	default:
		// Skip non-text, non-audio messages (images, stickers, etc.)
		slog.Debug("WhatsAppService ignoring unsupported message type", "from", response.From)
		return
	}

	// Send to responses channel (non-blocking)
	select {
	case s.responses <- response:
		slog.Debug("WhatsAppService incoming message forwarded", "from", response.From, "has_audio", len(response.Audio) > 0)
	case <-time.After(DefaultChannelTimeout):
		slog.Warn("WhatsAppService responses channel blocked, dropping message", "from", response.From, "timeout", DefaultChannelTimeout)
	}
}
