// Package models defines state structures for the onboarding conversation.
package models

import "time"

// StateType identifies a state in the onboarding conversation.
type StateType string

// Onboarding conversation states. StateStart is the initial state; there is
// no terminal state object — completion is signaled by committing the
// profile and deleting the session.
const (
	StateStart              StateType = "START"
	StateAskGoalsToday      StateType = "ASK_GOALS_TODAY"
	StateInputGoals         StateType = "INPUT_GOALS"
	StateSelectLifeArea     StateType = "SELECT_LIFE_AREA"
	StateSuggestExampleGoal StateType = "SUGGEST_EXAMPLE_GOAL"
	StateSummaryGoals       StateType = "SUMMARY_GOALS"
	StateRemoveGoals        StateType = "REMOVE_GOALS"
	StateDailyRules         StateType = "DAILY_RULES"
	StateExplainLogging     StateType = "EXPLAIN_LOGGING"
	StateSetReportTime      StateType = "SET_REPORT_TIME"
)

// IsValidState checks if the given state is part of the onboarding flow.
func IsValidState(st StateType) bool {
	switch st {
	case StateStart, StateAskGoalsToday, StateInputGoals, StateSelectLifeArea,
		StateSuggestExampleGoal, StateSummaryGoals, StateRemoveGoals,
		StateDailyRules, StateExplainLogging, StateSetReportTime:
		return true
	default:
		return false
	}
}

// Session is one user's in-progress, uncommitted onboarding conversation.
// PendingGoals and PendingArea accumulate during the dialogue and are only
// written to the profile store when the conversation completes.
type Session struct {
	UserID       string    `json:"user_id"`
	CurrentState StateType `json:"current_state"`
	PendingGoals []string  `json:"pending_goals,omitempty"`
	PendingArea  string    `json:"pending_area,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewSession creates a fresh session at the initial state.
func NewSession(userID string) *Session {
	now := time.Now()
	return &Session{
		UserID:       userID,
		CurrentState: StateStart,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
