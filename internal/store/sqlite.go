// Package store provides storage backends for GoalTrack.
//
// This file implements an SQLite-backed store for user profiles and sessions.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/wwwmplusm/goaltrack/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	// Determine DSN (required)
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	slog.Debug("Opening SQLite database connection")
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// GetProfile retrieves the profile for a user, or the default profile if
// none is stored.
func (s *SQLiteStore) GetProfile(userID string) (models.UserProfile, error) {
	var area, goalsJSON, reportTime sql.NullString
	err := s.db.QueryRow(`SELECT area, goals, report_time FROM users WHERE user_id = ?`, userID).
		Scan(&area, &goalsJSON, &reportTime)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetProfile not found, returning default", "userID", userID)
		return models.DefaultProfile(userID), nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetProfile failed", "error", err, "userID", userID)
		return models.UserProfile{}, fmt.Errorf("failed to query profile for %s: %w", userID, err)
	}
	profile := models.UserProfile{
		UserID:     userID,
		LifeArea:   area.String,
		Goals:      decodeGoals(goalsJSON.String),
		ReportTime: reportTime.String,
	}
	slog.Debug("SQLiteStore GetProfile found", "userID", userID, "goals", len(profile.Goals))
	return profile, nil
}

// SaveProfile stores or replaces the profile for a user.
func (s *SQLiteStore) SaveProfile(profile models.UserProfile) error {
	if profile.UserID == "" {
		return models.ErrEmptyUserID
	}
	goalsJSON, err := encodeGoals(profile.Goals)
	if err != nil {
		slog.Error("SQLiteStore SaveProfile encode failed", "error", err, "userID", profile.UserID)
		return err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO users (user_id, area, goals, report_time) VALUES (?, ?, ?, ?)`,
		profile.UserID, nilIfEmpty(profile.LifeArea), goalsJSON, nilIfEmpty(profile.ReportTime))
	if err != nil {
		slog.Error("SQLiteStore SaveProfile failed", "error", err, "userID", profile.UserID)
		return fmt.Errorf("failed to save profile for %s: %w", profile.UserID, err)
	}
	slog.Debug("SQLiteStore SaveProfile succeeded", "userID", profile.UserID, "goals", len(profile.Goals))
	return nil
}

// AddGoal appends a goal to the user's profile.
func (s *SQLiteStore) AddGoal(userID, goal string) error {
	p, err := s.GetProfile(userID)
	if err != nil {
		return err
	}
	p.Goals = append(p.Goals, goal)
	return s.SaveProfile(p)
}

// RemoveGoal removes the first occurrence of goal from the user's profile.
func (s *SQLiteStore) RemoveGoal(userID, goal string) error {
	p, err := s.GetProfile(userID)
	if err != nil {
		return err
	}
	p.Goals = removeFirst(p.Goals, goal)
	return s.SaveProfile(p)
}

// SetReportTime updates the report time on the user's profile.
func (s *SQLiteStore) SetReportTime(userID, reportTime string) error {
	p, err := s.GetProfile(userID)
	if err != nil {
		return err
	}
	p.ReportTime = reportTime
	return s.SaveProfile(p)
}

// GetSession retrieves the session for a user, or nil if none exists.
func (s *SQLiteStore) GetSession(userID string) (*models.Session, error) {
	var sess models.Session
	var goalsJSON, pendingArea sql.NullString
	err := s.db.QueryRow(`SELECT user_id, current_state, pending_goals, pending_area, created_at, updated_at
			  FROM sessions WHERE user_id = ?`, userID).
		Scan(&sess.UserID, &sess.CurrentState, &goalsJSON, &pendingArea, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetSession not found", "userID", userID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetSession failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query session for %s: %w", userID, err)
	}
	sess.PendingGoals = decodeGoals(goalsJSON.String)
	sess.PendingArea = pendingArea.String
	slog.Debug("SQLiteStore GetSession found", "userID", userID, "state", sess.CurrentState)
	return &sess, nil
}

// SaveSession stores or replaces the session for a user.
func (s *SQLiteStore) SaveSession(session models.Session) error {
	if session.UserID == "" {
		return models.ErrEmptyUserID
	}
	goalsJSON, err := encodeGoals(session.PendingGoals)
	if err != nil {
		slog.Error("SQLiteStore SaveSession encode failed", "error", err, "userID", session.UserID)
		return err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO sessions (user_id, current_state, pending_goals, pending_area, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		session.UserID, string(session.CurrentState), goalsJSON, nilIfEmpty(session.PendingArea),
		session.CreatedAt, session.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveSession failed", "error", err, "userID", session.UserID)
		return fmt.Errorf("failed to save session for %s: %w", session.UserID, err)
	}
	slog.Debug("SQLiteStore SaveSession succeeded", "userID", session.UserID, "state", session.CurrentState)
	return nil
}

// DeleteSession removes the session for a user.
func (s *SQLiteStore) DeleteSession(userID string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE user_id = ?`, userID)
	if err != nil {
		slog.Error("SQLiteStore DeleteSession failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to delete session for %s: %w", userID, err)
	}
	slog.Debug("SQLiteStore DeleteSession succeeded", "userID", userID)
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
