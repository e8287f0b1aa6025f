package memory

import (
	"context"
	"time"
)

// DefaultUserName seeds the profile row on first run.
const DefaultUserName = "Srinika"

// Profile is the singleton durable user record. Exactly one exists per store.
type Profile struct {
	UserName     string `json:"user_name"`
	SessionCount int    `json:"session_count"`
	TotalTurns   int    `json:"total_turns"`
}

// TopicEntry is one row of the append-only turn log.
type TopicEntry struct {
	ID        int64     `json:"id"`
	SessionID int       `json:"session_id"`
	Message   string    `json:"message"`
	Intent    string    `json:"intent"`
	Timestamp time.Time `json:"timestamp"`
}

// Store persists the user profile and the append-only topic log.
//
// Absence of data is never an error: Profile returns defaults on an empty
// store and RecentTopics returns an empty slice. Write faults are returned
// to the caller; the conversation layer treats them as recoverable.
type Store interface {
	// StartSession increments the durable session counter and returns the
	// new value. Called once per process lifetime, before any turn.
	StartSession(ctx context.Context) (int, error)

	Profile(ctx context.Context) (Profile, error)

	// RecentTopics returns up to limit logged messages, most recent first.
	RecentTopics(ctx context.Context, limit int) ([]string, error)

	// LogTurn appends one topic entry and increments TotalTurns atomically.
	// Callers must not log greeting or farewell turns; hellos and
	// goodbyes are not topics.
	LogTurn(ctx context.Context, message, intent string, sessionID int) error

	// Reset clears all topic entries and restores profile defaults in place.
	// Open handles to the store stay valid afterwards.
	Reset(ctx context.Context) error

	Close() error
}

func defaultProfile(userName string) Profile {
	if userName == "" {
		userName = DefaultUserName
	}
	return Profile{UserName: userName}
}
