// Package transcribe provides speech-to-text for voice notes using the
// OpenAI Whisper API.
//
// Transcription is best-effort: callers must treat empty text as "no usable
// input" rather than a valid message.
package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultAudioFileName is the synthetic filename attached to uploaded
// voice note bytes (the API infers the container format from it).
const DefaultAudioFileName = "voice-note.ogg"

// Transcriber converts audio bytes into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Opts holds configuration options for the transcription client.
type Opts struct {
	APIKey string
}

// Option defines a configuration option for the transcription client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) {
		o.APIKey = key
	}
}

// Client wraps the OpenAI audio transcription service.
type Client struct {
	client openai.Client
}

// NewClient initializes a transcription client, falling back to the
// OPENAI_API_KEY environment variable when no key option is provided.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not set")
	}
	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Client{client: cli}, nil
}

// Transcribe sends the audio to Whisper and returns the trimmed transcript.
// Empty audio yields empty text without an API call.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		slog.Debug("Transcribe called with empty audio, skipping request")
		return "", nil
	}

	slog.Debug("Transcribe sending audio to Whisper", "bytes", len(audio))
	resp, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModelWhisper1,
		File:  openai.File(bytes.NewReader(audio), DefaultAudioFileName, "audio/ogg"),
	})
	if err != nil {
		slog.Error("Transcribe request failed", "error", err)
		return "", fmt.Errorf("transcription request failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	slog.Debug("Transcribe succeeded", "chars", len(text))
	return text, nil
}
