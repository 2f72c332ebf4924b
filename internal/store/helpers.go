package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string // database connection string (file path for SQLite)
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// DetectDSNType determines whether a DSN refers to PostgreSQL or SQLite.
// Postgres DSNs use URL or key=value forms; everything else is treated as
// a SQLite file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// encodeGoals serializes an ordered goal list to its JSON column form.
// An empty list encodes as "[]" so decode round-trips to a non-nil slice.
func encodeGoals(goals []string) (string, error) {
	if goals == nil {
		goals = []string{}
	}
	b, err := json.Marshal(goals)
	if err != nil {
		return "", fmt.Errorf("failed to encode goals: %w", err)
	}
	return string(b), nil
}

// decodeGoals parses the JSON goals column. Empty or NULL columns decode to
// an empty list rather than an error.
func decodeGoals(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var goals []string
	if err := json.Unmarshal([]byte(raw), &goals); err != nil {
		slog.Error("Failed to decode goals column, returning empty list", "error", err)
		return []string{}
	}
	if goals == nil {
		goals = []string{}
	}
	return goals
}

// removeFirst removes the first occurrence of goal from goals.
func removeFirst(goals []string, goal string) []string {
	for i, g := range goals {
		if g == goal {
			return append(goals[:i], goals[i+1:]...)
		}
	}
	return goals
}

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
