package models

import (
	"strings"
	"testing"
)

func TestMessageValidate(t *testing.T) {
	cases := []struct {
		name    string
		msg     Message
		wantErr error
	}{
		{"valid body only", Message{Body: "hello"}, nil},
		{"valid with options", Message{Body: "pick one", Options: []string{"Yes", "No"}}, nil},
		{"empty body", Message{}, ErrEmptyBody},
		{"body too long", Message{Body: strings.Repeat("a", MaxMessageBodyLength+1)}, ErrBodyTooLong},
		{"body at limit", Message{Body: strings.Repeat("a", MaxMessageBodyLength)}, nil},
		{"empty option label", Message{Body: "pick", Options: []string{"Yes", ""}}, ErrOptionLabelEmpty},
		{"option label too long", Message{Body: "pick", Options: []string{strings.Repeat("b", MaxOptionLabelLength+1)}}, ErrOptionLabelTooLong},
		{"option label at limit", Message{Body: "pick", Options: []string{strings.Repeat("b", MaxOptionLabelLength)}}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := c.msg.Validate(); err != c.wantErr {
				t.Errorf("Validate() = %v, want %v", err, c.wantErr)
			}
		})
	}
}

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile("+15551234567")
	if p.UserID != "+15551234567" {
		t.Errorf("expected user ID preserved, got %q", p.UserID)
	}
	if p.Goals == nil || len(p.Goals) != 0 {
		t.Errorf("expected empty non-nil goals, got %v", p.Goals)
	}
	if p.LifeArea != "" || p.ReportTime != "" {
		t.Errorf("expected empty area and report time, got %+v", p)
	}
}

func TestIsValidState(t *testing.T) {
	valid := []StateType{
		StateStart, StateAskGoalsToday, StateInputGoals, StateSelectLifeArea,
		StateSuggestExampleGoal, StateSummaryGoals, StateRemoveGoals,
		StateDailyRules, StateExplainLogging, StateSetReportTime,
	}
	for _, st := range valid {
		if !IsValidState(st) {
			t.Errorf("expected %s to be valid", st)
		}
	}
	for _, st := range []StateType{"", "DONE", "unknown"} {
		if IsValidState(st) {
			t.Errorf("expected %s to be invalid", st)
		}
	}
}

func TestNewSession(t *testing.T) {
	s := NewSession("+15551234567")
	if s.UserID != "+15551234567" {
		t.Errorf("expected user ID preserved, got %q", s.UserID)
	}
	if s.CurrentState != StateStart {
		t.Errorf("expected initial state %s, got %s", StateStart, s.CurrentState)
	}
	if len(s.PendingGoals) != 0 || s.PendingArea != "" {
		t.Errorf("expected empty pending data, got %+v", s)
	}
	if s.CreatedAt.IsZero() || !s.CreatedAt.Equal(s.UpdatedAt) {
		t.Error("expected CreatedAt and UpdatedAt set to the same instant")
	}
}
