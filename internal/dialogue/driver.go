// Package dialogue provides the driver that connects inbound user events to
// the onboarding state machine and the profile store.
//
// The driver owns session state for the duration of a conversation. Events
// for the same user are serialized through a per-user lock; different users
// are handled independently.
package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/wwwmplusm/goaltrack/internal/flow"
	"github.com/wwwmplusm/goaltrack/internal/models"
	"github.com/wwwmplusm/goaltrack/internal/store"
)

// Driver resolves sessions, applies the state machine, and commits the
// accumulated profile when a conversation completes.
type Driver struct {
	store   store.Store
	machine *flow.Onboarding

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDriver creates a Driver backed by the given store.
func NewDriver(st store.Store) *Driver {
	return &Driver{
		store:   st,
		machine: flow.NewOnboarding(),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Handle processes one inbound text event for a user and returns the
// outbound prompts to send.
//
// Empty text (e.g. a failed transcription) never advances the conversation.
// A start event force-resets any existing session. Unmatched input at the
// current state is dropped silently. When the machine signals commit, the
// profile is saved before any message is returned; on a save failure the
// session is left at its current state so the user can retry, and the error
// propagates to the caller.
func (d *Driver) Handle(ctx context.Context, userID, text string) ([]models.Message, error) {
	if userID == "" {
		return nil, models.ErrEmptyUserID
	}
	text = strings.TrimSpace(text)
	if text == "" {
		slog.Debug("Driver ignoring empty input", "userID", userID)
		return nil, nil
	}

	lock := d.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, err := d.resolveSession(userID, text)
	if err != nil {
		return nil, err
	}

	result := d.machine.Handle(session, text)
	if !result.Matched {
		// Unmatched input is dropped without a state change or re-prompt.
		return nil, nil
	}

	if result.Commit {
		return d.commit(session, result)
	}

	if err := d.store.SaveSession(*session); err != nil {
		slog.Error("Driver failed to save session", "error", err, "userID", userID, "state", session.CurrentState)
		return nil, fmt.Errorf("failed to save session for %s: %w", userID, err)
	}
	slog.Debug("Driver handled event", "userID", userID, "state", session.CurrentState, "messages", len(result.Messages))
	return result.Messages, nil
}

// resolveSession loads or creates the session for the event. Start events
// always begin a fresh session, discarding any pending data.
func (d *Driver) resolveSession(userID, text string) (*models.Session, error) {
	if flow.IsStartEvent(text) {
		slog.Info("Driver starting new conversation", "userID", userID)
		return models.NewSession(userID), nil
	}
	session, err := d.store.GetSession(userID)
	if err != nil {
		slog.Error("Driver failed to load session", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to load session for %s: %w", userID, err)
	}
	if session == nil {
		session = models.NewSession(userID)
	}
	return session, nil
}

// commit writes the finished profile and clears the session.
func (d *Driver) commit(session *models.Session, result flow.Result) ([]models.Message, error) {
	profile := models.UserProfile{
		UserID:     session.UserID,
		LifeArea:   session.PendingArea,
		Goals:      append([]string{}, session.PendingGoals...),
		ReportTime: result.ReportTime,
	}
	if err := d.store.SaveProfile(profile); err != nil {
		slog.Error("Driver failed to commit profile", "error", err, "userID", session.UserID)
		return nil, fmt.Errorf("failed to commit profile for %s: %w", session.UserID, err)
	}
	if err := d.store.DeleteSession(session.UserID); err != nil {
		// The profile is committed; a stale session is cleaned up by the
		// next start event.
		slog.Warn("Driver failed to clear session after commit", "error", err, "userID", session.UserID)
	}
	slog.Info("Driver committed profile", "userID", session.UserID, "area", profile.LifeArea, "goals", len(profile.Goals), "reportTime", profile.ReportTime)
	return result.Messages, nil
}

// userLock returns the serialization lock for a user, creating it on first use.
func (d *Driver) userLock(userID string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	lock, ok := d.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		d.locks[userID] = lock
	}
	return lock
}
