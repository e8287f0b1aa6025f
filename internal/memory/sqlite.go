package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the default file-backed store. A single file, no server,
// survives process restarts; suits a one-user companion on small hardware.
type SQLiteStore struct {
	db       *sql.DB
	userName string
}

// NewSQLiteStore opens (creating if needed) the database at path and ensures
// the schema plus the singleton profile row exist.
func NewSQLiteStore(path, userName string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// The store is a single-writer resource; one connection avoids
	// SQLITE_BUSY between the REPL and the HTTP surface.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := &SQLiteStore{db: db, userName: userName}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS profile (
			id            INTEGER PRIMARY KEY CHECK (id = 1),
			user_name     TEXT    NOT NULL DEFAULT 'Srinika',
			session_count INTEGER NOT NULL DEFAULT 0,
			total_turns   INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS topics (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER NOT NULL DEFAULT 0,
			message    TEXT    NOT NULL,
			intent     TEXT    NOT NULL DEFAULT 'general',
			timestamp  TEXT    NOT NULL DEFAULT (datetime('now'))
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}

	// Seed exactly one profile row; INSERT OR IGNORE keeps reruns harmless.
	name := s.userName
	if name == "" {
		name = DefaultUserName
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO profile (id, user_name, session_count, total_turns) VALUES (1, ?, 0, 0)`,
		name,
	)
	if err != nil {
		return fmt.Errorf("seed profile row: %w", err)
	}
	return nil
}

func (s *SQLiteStore) StartSession(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`UPDATE profile SET session_count = session_count + 1 WHERE id = 1
		 RETURNING session_count`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment session count: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) Profile(ctx context.Context) (Profile, error) {
	var p Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT user_name, session_count, total_turns FROM profile WHERE id = 1`,
	).Scan(&p.UserName, &p.SessionCount, &p.TotalTurns)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultProfile(s.userName), nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) RecentTopics(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 3
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT message FROM topics ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent topics: %w", err)
	}
	defer rows.Close()

	topics := make([]string, 0, limit)
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, fmt.Errorf("scan topic row: %w", err)
		}
		topics = append(topics, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topic rows: %w", err)
	}
	return topics, nil
}

func (s *SQLiteStore) LogTurn(ctx context.Context, message, intent string, sessionID int) error {
	// One transaction: a turn is either fully logged (topic row + counter)
	// or not at all.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin log turn: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO topics (session_id, message, intent) VALUES (?, ?, ?)`,
		sessionID, message, intent,
	); err != nil {
		return fmt.Errorf("insert topic: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE profile SET total_turns = total_turns + 1 WHERE id = 1`,
	); err != nil {
		return fmt.Errorf("increment total turns: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit log turn: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Reset(ctx context.Context) error {
	// DELETE rather than DROP so open handles stay valid on platforms that
	// lock open files.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM topics`); err != nil {
		return fmt.Errorf("clear topics: %w", err)
	}
	name := s.userName
	if name == "" {
		name = DefaultUserName
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE profile SET user_name = ?, session_count = 0, total_turns = 0 WHERE id = 1`,
		name,
	); err != nil {
		return fmt.Errorf("reset profile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
