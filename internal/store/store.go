// Package store provides storage backends for GoalTrack.
//
// It includes an in-memory store plus SQLite and PostgreSQL backends for
// user profiles and onboarding sessions.
package store

import (
	"log/slog"
	"sync"

	"github.com/wwwmplusm/goaltrack/internal/models"
)

// Store is the persistence contract for profiles and sessions.
//
// GetProfile never fails for an unknown user: it returns a default profile.
// SaveProfile replaces the stored record wholesale. AddGoal, RemoveGoal and
// SetReportTime are read-modify-write conveniences; a single writer per
// user is assumed.
type Store interface {
	GetProfile(userID string) (models.UserProfile, error)
	SaveProfile(profile models.UserProfile) error
	AddGoal(userID, goal string) error
	RemoveGoal(userID, goal string) error
	SetReportTime(userID, reportTime string) error

	GetSession(userID string) (*models.Session, error)
	SaveSession(session models.Session) error
	DeleteSession(userID string) error

	Close() error
}

// InMemoryStore is a simple mutex-guarded in-memory store for profiles and
// sessions. It is the default backend when no database DSN is configured,
// and the backend used by tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]models.UserProfile
	sessions map[string]models.Session
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		profiles: make(map[string]models.UserProfile),
		sessions: make(map[string]models.Session),
	}
}

// GetProfile returns the stored profile, or a default profile if none exists.
func (s *InMemoryStore) GetProfile(userID string) (models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return models.DefaultProfile(userID), nil
	}
	return copyProfile(p), nil
}

// SaveProfile replaces the stored profile for the user.
func (s *InMemoryStore) SaveProfile(profile models.UserProfile) error {
	if profile.UserID == "" {
		return models.ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UserID] = copyProfile(profile)
	slog.Debug("InMemoryStore SaveProfile succeeded", "userID", profile.UserID, "goals", len(profile.Goals))
	return nil
}

// AddGoal appends a goal to the user's profile.
func (s *InMemoryStore) AddGoal(userID, goal string) error {
	p, err := s.GetProfile(userID)
	if err != nil {
		return err
	}
	p.Goals = append(p.Goals, goal)
	return s.SaveProfile(p)
}

// RemoveGoal removes the first occurrence of goal from the user's profile.
// Removing an absent goal is a no-op.
func (s *InMemoryStore) RemoveGoal(userID, goal string) error {
	p, err := s.GetProfile(userID)
	if err != nil {
		return err
	}
	p.Goals = removeFirst(p.Goals, goal)
	return s.SaveProfile(p)
}

// SetReportTime updates the report time on the user's profile.
func (s *InMemoryStore) SetReportTime(userID, reportTime string) error {
	p, err := s.GetProfile(userID)
	if err != nil {
		return err
	}
	p.ReportTime = reportTime
	return s.SaveProfile(p)
}

// GetSession returns the user's session, or nil if no session exists.
func (s *InMemoryStore) GetSession(userID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	out := sess
	out.PendingGoals = append([]string(nil), sess.PendingGoals...)
	return &out, nil
}

// SaveSession stores or replaces the user's session.
func (s *InMemoryStore) SaveSession(session models.Session) error {
	if session.UserID == "" {
		return models.ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session.PendingGoals = append([]string(nil), session.PendingGoals...)
	s.sessions[session.UserID] = session
	return nil
}

// DeleteSession removes the user's session if present.
func (s *InMemoryStore) DeleteSession(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}

func copyProfile(p models.UserProfile) models.UserProfile {
	p.Goals = append([]string(nil), p.Goals...)
	if p.Goals == nil {
		p.Goals = []string{}
	}
	return p
}
