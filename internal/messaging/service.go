// Package messaging provides pluggable message transports for GoalTrack.
package messaging

import (
	"context"
	"fmt"
	"strings"

	"github.com/wwwmplusm/goaltrack/internal/models"
)

// Service defines a pluggable message delivery abstraction.
// It supports sending prompts with keyboard options and provides a channel
// of incoming participant responses.
type Service interface {
	// SendMessage sends an outbound prompt to a recipient.
	SendMessage(ctx context.Context, to string, msg models.Message) error

	// Start begins any background processing (e.g., polling for events).
	Start(ctx context.Context) error

	// Stop stops background processing and cleans up resources.
	Stop() error

	// Responses returns a channel of incoming participant responses.
	Responses() <-chan models.Response
}

// OptionLineFormat is the format string for rendering one keyboard option
// on transports without native reply keyboards.
const OptionLineFormat = "\n%d. %s"

// RenderMessage flattens a message and its option labels into a single text
// body. Options become a numbered list under the body; users reply with the
// label text.
func RenderMessage(msg models.Message) string {
	body := msg.Body
	for i, opt := range msg.Options {
		body += fmt.Sprintf(OptionLineFormat, i+1, opt)
	}
	return body
}

// canonicalizeNumber converts a transport sender identifier into the plain
// user ID form used as the store key (E.164 with leading plus).
func canonicalizeNumber(raw string) string {
	n := strings.TrimPrefix(raw, "whatsapp:")
	if n != "" && !strings.HasPrefix(n, "+") {
		n = "+" + n
	}
	return n
}
