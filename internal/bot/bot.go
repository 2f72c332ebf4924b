// Package bot wires the GoalTrack modules together and pumps inbound
// responses from the transport into the dialogue driver.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wwwmplusm/goaltrack/internal/dialogue"
	"github.com/wwwmplusm/goaltrack/internal/messaging"
	"github.com/wwwmplusm/goaltrack/internal/models"
	"github.com/wwwmplusm/goaltrack/internal/store"
	"github.com/wwwmplusm/goaltrack/internal/transcribe"
	"github.com/wwwmplusm/goaltrack/internal/twiliowhatsapp"
	"github.com/wwwmplusm/goaltrack/internal/whatsapp"
)

// Transport names accepted by WithTransport.
const (
	TransportWhatsApp = "whatsapp"
	TransportTwilio   = "twilio"
)

// Opts holds configuration options for the bot composition.
type Opts struct {
	Transport   string // transport backend: whatsapp (default) or twilio
	WebhookAddr string // listen address for the Twilio inbound webhook
}

// Option defines a configuration option for the bot.
type Option func(*Opts)

// WithTransport selects the messaging transport backend.
func WithTransport(name string) Option {
	return func(o *Opts) { o.Transport = name }
}

// WithWebhookAddr sets the listen address for the Twilio inbound webhook.
func WithWebhookAddr(addr string) Option {
	return func(o *Opts) { o.WebhookAddr = addr }
}

// Run builds the store, transcriber, transport and dialogue driver from the
// provided option groups and processes inbound responses until the context
// is cancelled.
func Run(ctx context.Context, storeOpts []store.Option, waOpts []whatsapp.Option, twilioOpts []twiliowhatsapp.Option, trOpts []transcribe.Option, opts ...Option) error {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Transport == "" {
		cfg.Transport = TransportWhatsApp
	}

	st, err := buildStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	// Transcription is optional: without an API key voice notes are ignored.
	var transcriber transcribe.Transcriber
	if tr, err := transcribe.NewClient(trOpts...); err != nil {
		slog.Warn("Transcription disabled, voice notes will be ignored", "reason", err)
	} else {
		transcriber = tr
	}

	service, err := buildService(cfg, waOpts, twilioOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize %s transport: %w", cfg.Transport, err)
	}

	driver := dialogue.NewDriver(st)

	if err := service.Start(ctx); err != nil {
		return fmt.Errorf("failed to start transport: %w", err)
	}
	defer service.Stop()

	slog.Info("GoalTrack bot running", "transport", cfg.Transport, "transcription", transcriber != nil)
	pump(ctx, service, driver, transcriber)
	slog.Info("GoalTrack bot stopped")
	return nil
}

// buildStore selects the store backend from the configured DSN: Postgres
// for postgres DSNs, SQLite for file paths, in-memory when unset.
func buildStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	switch {
	case cfg.DSN == "":
		slog.Info("No database DSN configured, using in-memory store")
		return store.NewInMemoryStore(), nil
	case store.DetectDSNType(cfg.DSN) == "postgres":
		return store.NewPostgresStore(storeOpts...)
	default:
		return store.NewSQLiteStore(storeOpts...)
	}
}

// buildService constructs the configured messaging transport.
func buildService(cfg Opts, waOpts []whatsapp.Option, twilioOpts []twiliowhatsapp.Option) (messaging.Service, error) {
	switch cfg.Transport {
	case TransportTwilio:
		client, err := twiliowhatsapp.NewClient(twilioOpts...)
		if err != nil {
			return nil, err
		}
		return messaging.NewTwilioService(client, cfg.WebhookAddr), nil
	case TransportWhatsApp:
		client, err := whatsapp.NewClient(waOpts...)
		if err != nil {
			return nil, err
		}
		return messaging.NewWhatsAppService(client), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

// pump consumes inbound responses until the context is cancelled. Each
// response is handled on its own goroutine; the driver's per-user lock
// keeps events for the same user serialized.
func pump(ctx context.Context, service messaging.Service, driver *dialogue.Driver, transcriber transcribe.Transcriber) {
	for {
		select {
		case <-ctx.Done():
			return
		case resp, ok := <-service.Responses():
			if !ok {
				return
			}
			go handleResponse(ctx, service, driver, transcriber, resp)
		}
	}
}

// handleResponse turns one inbound response into dialogue input and sends
// the resulting prompts. Voice notes are transcribed first; a failed or
// empty transcription leaves the conversation where it was.
func handleResponse(ctx context.Context, service messaging.Service, driver *dialogue.Driver, transcriber transcribe.Transcriber, resp models.Response) {
	text := resp.Body
	if text == "" && len(resp.Audio) > 0 {
		if transcriber == nil {
			slog.Warn("Ignoring voice note, transcription not configured", "from", resp.From)
			return
		}
		transcript, err := transcriber.Transcribe(ctx, resp.Audio)
		if err != nil {
			slog.Warn("Voice note transcription failed, step not advanced", "error", err, "from", resp.From)
			return
		}
		text = transcript
	}

	messages, err := driver.Handle(ctx, resp.From, text)
	if err != nil {
		slog.Error("Failed to handle inbound event", "error", err, "from", resp.From)
		return
	}
	for _, msg := range messages {
		if err := service.SendMessage(ctx, resp.From, msg); err != nil {
			slog.Error("Failed to send outbound message", "error", err, "to", resp.From)
			return
		}
	}
}
