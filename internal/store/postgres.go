// Package store provides storage backends for GoalTrack.
//
// This file implements a PostgreSQL-backed store for user profiles and sessions.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/wwwmplusm/goaltrack/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	// Determine DSN (required)
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	slog.Debug("Opening Postgres database connection")
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	// Configure connection pool for better performance
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// GetProfile retrieves the profile for a user, or the default profile if
// none is stored.
func (s *PostgresStore) GetProfile(userID string) (models.UserProfile, error) {
	var area, goalsJSON, reportTime sql.NullString
	err := s.db.QueryRow(`SELECT area, goals, report_time FROM users WHERE user_id = $1`, userID).
		Scan(&area, &goalsJSON, &reportTime)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetProfile not found, returning default", "userID", userID)
		return models.DefaultProfile(userID), nil
	}
	if err != nil {
		slog.Error("PostgresStore GetProfile failed", "error", err, "userID", userID)
		return models.UserProfile{}, fmt.Errorf("failed to query profile for %s: %w", userID, err)
	}
	profile := models.UserProfile{
		UserID:     userID,
		LifeArea:   area.String,
		Goals:      decodeGoals(goalsJSON.String),
		ReportTime: reportTime.String,
	}
	slog.Debug("PostgresStore GetProfile found", "userID", userID, "goals", len(profile.Goals))
	return profile, nil
}

// SaveProfile stores or replaces the profile for a user.
func (s *PostgresStore) SaveProfile(profile models.UserProfile) error {
	if profile.UserID == "" {
		return models.ErrEmptyUserID
	}
	goalsJSON, err := encodeGoals(profile.Goals)
	if err != nil {
		slog.Error("PostgresStore SaveProfile encode failed", "error", err, "userID", profile.UserID)
		return err
	}
	_, err = s.db.Exec(`INSERT INTO users (user_id, area, goals, report_time) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET area = EXCLUDED.area, goals = EXCLUDED.goals, report_time = EXCLUDED.report_time`,
		profile.UserID, nilIfEmpty(profile.LifeArea), goalsJSON, nilIfEmpty(profile.ReportTime))
	if err != nil {
		slog.Error("PostgresStore SaveProfile failed", "error", err, "userID", profile.UserID)
		return fmt.Errorf("failed to save profile for %s: %w", profile.UserID, err)
	}
	slog.Debug("PostgresStore SaveProfile succeeded", "userID", profile.UserID, "goals", len(profile.Goals))
	return nil
}

// AddGoal appends a goal to the user's profile.
func (s *PostgresStore) AddGoal(userID, goal string) error {
	p, err := s.GetProfile(userID)
	if err != nil {
		return err
	}
	p.Goals = append(p.Goals, goal)
	return s.SaveProfile(p)
}

// RemoveGoal removes the first occurrence of goal from the user's profile.
func (s *PostgresStore) RemoveGoal(userID, goal string) error {
	p, err := s.GetProfile(userID)
	if err != nil {
		return err
	}
	p.Goals = removeFirst(p.Goals, goal)
	return s.SaveProfile(p)
}

// SetReportTime updates the report time on the user's profile.
func (s *PostgresStore) SetReportTime(userID, reportTime string) error {
	p, err := s.GetProfile(userID)
	if err != nil {
		return err
	}
	p.ReportTime = reportTime
	return s.SaveProfile(p)
}

// GetSession retrieves the session for a user, or nil if none exists.
func (s *PostgresStore) GetSession(userID string) (*models.Session, error) {
	var sess models.Session
	var goalsJSON, pendingArea sql.NullString
	err := s.db.QueryRow(`SELECT user_id, current_state, pending_goals, pending_area, created_at, updated_at
			  FROM sessions WHERE user_id = $1`, userID).
		Scan(&sess.UserID, &sess.CurrentState, &goalsJSON, &pendingArea, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetSession not found", "userID", userID)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetSession failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query session for %s: %w", userID, err)
	}
	sess.PendingGoals = decodeGoals(goalsJSON.String)
	sess.PendingArea = pendingArea.String
	slog.Debug("PostgresStore GetSession found", "userID", userID, "state", sess.CurrentState)
	return &sess, nil
}

// SaveSession stores or replaces the session for a user.
func (s *PostgresStore) SaveSession(session models.Session) error {
	if session.UserID == "" {
		return models.ErrEmptyUserID
	}
	goalsJSON, err := encodeGoals(session.PendingGoals)
	if err != nil {
		slog.Error("PostgresStore SaveSession encode failed", "error", err, "userID", session.UserID)
		return err
	}
	_, err = s.db.Exec(`INSERT INTO sessions (user_id, current_state, pending_goals, pending_area, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET current_state = EXCLUDED.current_state,
			pending_goals = EXCLUDED.pending_goals, pending_area = EXCLUDED.pending_area,
			updated_at = EXCLUDED.updated_at`,
		session.UserID, string(session.CurrentState), goalsJSON, nilIfEmpty(session.PendingArea),
		session.CreatedAt, session.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore SaveSession failed", "error", err, "userID", session.UserID)
		return fmt.Errorf("failed to save session for %s: %w", session.UserID, err)
	}
	slog.Debug("PostgresStore SaveSession succeeded", "userID", session.UserID, "state", session.CurrentState)
	return nil
}

// DeleteSession removes the session for a user.
func (s *PostgresStore) DeleteSession(userID string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		slog.Error("PostgresStore DeleteSession failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to delete session for %s: %w", userID, err)
	}
	slog.Debug("PostgresStore DeleteSession succeeded", "userID", userID)
	return nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
