package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the same semantics as SQLiteStore for hosts that
// already run Postgres (e.g. the companion embedded in a larger deployment).
type PostgresStore struct {
	pool     *pgxpool.Pool
	userName string
}

func NewPostgresStore(ctx context.Context, databaseURL, userName string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	s := &PostgresStore{pool: pool, userName: userName}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS profile (
			id            INTEGER PRIMARY KEY CHECK (id = 1),
			user_name     TEXT    NOT NULL DEFAULT 'Srinika',
			session_count INTEGER NOT NULL DEFAULT 0,
			total_turns   INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS topics (
			id         BIGSERIAL PRIMARY KEY,
			session_id INTEGER NOT NULL DEFAULT 0,
			message    TEXT    NOT NULL,
			intent     TEXT    NOT NULL DEFAULT 'general',
			timestamp  TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}

	name := s.userName
	if name == "" {
		name = DefaultUserName
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO profile (id, user_name, session_count, total_turns)
		 VALUES (1, $1, 0, 0) ON CONFLICT (id) DO NOTHING`,
		name,
	)
	if err != nil {
		return fmt.Errorf("seed profile row: %w", err)
	}
	return nil
}

func (s *PostgresStore) StartSession(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`UPDATE profile SET session_count = session_count + 1 WHERE id = 1
		 RETURNING session_count`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment session count: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Profile(ctx context.Context) (Profile, error) {
	var p Profile
	err := s.pool.QueryRow(ctx,
		`SELECT user_name, session_count, total_turns FROM profile WHERE id = 1`,
	).Scan(&p.UserName, &p.SessionCount, &p.TotalTurns)
	if errors.Is(err, pgx.ErrNoRows) {
		return defaultProfile(s.userName), nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) RecentTopics(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 3
	}
	rows, err := s.pool.Query(ctx,
		`SELECT message FROM topics ORDER BY id DESC LIMIT $1`, limit,
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

func (s *PostgresStore) LogTurn(ctx context.Context, message, intent string, sessionID int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin log turn: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO topics (session_id, message, intent) VALUES ($1, $2, $3)`,
		sessionID, message, intent,
	); err != nil {
		return fmt.Errorf("insert topic: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE profile SET total_turns = total_turns + 1 WHERE id = 1`,
	); err != nil {
		return fmt.Errorf("increment total turns: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit log turn: %w", err)
	}
	return nil
}

func (s *PostgresStore) Reset(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM topics`); err != nil {
		return fmt.Errorf("clear topics: %w", err)
	}
	name := s.userName
	if name == "" {
		name = DefaultUserName
	}
	if _, err := tx.Exec(ctx,
		`UPDATE profile SET user_name = $1, session_count = 0, total_turns = 0 WHERE id = 1`,
		name,
	); err != nil {
		return fmt.Errorf("reset profile: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
