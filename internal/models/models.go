// Package models defines the core data structures for GoalTrack.
//
// It includes the persisted user profile, inbound/outbound message types,
// and validation errors shared across modules.
package models

import (
	"errors"
)

// Validation constants for input validation
const (
	// MaxMessageBodyLength defines the maximum allowed length for outbound message bodies
	MaxMessageBodyLength = 4096
	// MaxOptionLabelLength defines the maximum allowed length for keyboard option labels
	MaxOptionLabelLength = 100
)

// Error variables for better error handling and testability
var (
	ErrEmptyUserID        = errors.New("user ID cannot be empty")
	ErrEmptyBody          = errors.New("message body cannot be empty")
	ErrBodyTooLong        = errors.New("message body exceeds maximum length")
	ErrOptionLabelEmpty   = errors.New("option label cannot be empty")
	ErrOptionLabelTooLong = errors.New("option label exceeds maximum length")
)

// UserProfile is the committed onboarding result for a user.
// A profile conceptually exists for every known user ID; stores return a
// default profile rather than an error when nothing is saved yet.
type UserProfile struct {
	UserID     string   `json:"user_id"`
	LifeArea   string   `json:"life_area,omitempty"`
	Goals      []string `json:"goals"`
	ReportTime string   `json:"report_time,omitempty"`
}

// DefaultProfile returns the profile used for a user with nothing stored yet.
func DefaultProfile(userID string) UserProfile {
	return UserProfile{UserID: userID, Goals: []string{}}
}

// Response represents an incoming participant message from a transport.
// Audio carries the raw bytes of a voice note when the transport received
// one instead of text; Body is empty in that case until transcription runs.
type Response struct {
	From  string `json:"from"`
	Body  string `json:"body"`
	Audio []byte `json:"-"`
	Time  int64  `json:"time"`
}

// Message represents an outbound prompt produced by the dialogue.
// Options is the set of keyboard option labels to present alongside the
// body; it is transport-agnostic (plain labels, no framework objects).
type Message struct {
	Body    string   `json:"body"`
	Options []string `json:"options,omitempty"`
}

// Validate performs validation on an outbound Message.
func (m *Message) Validate() error {
	if m.Body == "" {
		return ErrEmptyBody
	}
	if len(m.Body) > MaxMessageBodyLength {
		return ErrBodyTooLong
	}
	for _, opt := range m.Options {
		if opt == "" {
			return ErrOptionLabelEmpty
		}
		if len(opt) > MaxOptionLabelLength {
			return ErrOptionLabelTooLong
		}
	}
	return nil
}
