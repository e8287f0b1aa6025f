package memory

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.db")
	s, err := NewSQLiteStore(path, "")
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteProfileDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if p.UserName != DefaultUserName {
		t.Fatalf("UserName = %q, want %q", p.UserName, DefaultUserName)
	}
	if p.SessionCount != 0 || p.TotalTurns != 0 {
		t.Fatalf("fresh profile counts = %d/%d, want 0/0", p.SessionCount, p.TotalTurns)
	}
}

func TestSQLiteStartSessionPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path, "")
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	first, err := s.StartSession(ctx)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if first != 1 {
		t.Fatalf("first session = %d, want 1", first)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Second process start: the counter must carry over.
	s2, err := NewSQLiteStore(path, "")
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s2.Close()
	second, err := s2.StartSession(ctx)
	if err != nil {
		t.Fatalf("StartSession() after reopen error = %v", err)
	}
	if second != first+1 {
		t.Fatalf("second session = %d, want %d", second, first+1)
	}
}

func TestSQLiteLogTurnAndRecentTopics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	msgs := []string{"what is gravity", "2 plus 2", "why is the sky blue", "tell me about stars"}
	for _, m := range msgs {
		if err := s.LogTurn(ctx, m, "question", 1); err != nil {
			t.Fatalf("LogTurn(%q) error = %v", m, err)
		}
	}

	topics, err := s.RecentTopics(ctx, 3)
	if err != nil {
		t.Fatalf("RecentTopics() error = %v", err)
	}
	want := []string{"tell me about stars", "why is the sky blue", "2 plus 2"}
	if len(topics) != len(want) {
		t.Fatalf("len(topics) = %d, want %d", len(topics), len(want))
	}
	for i := range want {
		if topics[i] != want[i] {
			t.Fatalf("topics[%d] = %q, want %q", i, topics[i], want[i])
		}
	}

	p, err := s.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if p.TotalTurns != len(msgs) {
		t.Fatalf("TotalTurns = %d, want %d", p.TotalTurns, len(msgs))
	}
}

func TestSQLiteResetKeepsHandleUsable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.StartSession(ctx); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if err := s.LogTurn(ctx, "what is gravity", "question", 1); err != nil {
		t.Fatalf("LogTurn() error = %v", err)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	p, err := s.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile() after reset error = %v", err)
	}
	if p.SessionCount != 0 || p.TotalTurns != 0 {
		t.Fatalf("counts after reset = %d/%d, want 0/0", p.SessionCount, p.TotalTurns)
	}
	topics, err := s.RecentTopics(ctx, 3)
	if err != nil {
		t.Fatalf("RecentTopics() after reset error = %v", err)
	}
	if len(topics) != 0 {
		t.Fatalf("len(topics) after reset = %d, want 0", len(topics))
	}

	// The same handle must keep working after a reset.
	if err := s.LogTurn(ctx, "still alive", "general", 1); err != nil {
		t.Fatalf("LogTurn() after reset error = %v", err)
	}
}

func TestSQLiteRecentTopicsEmptyStore(t *testing.T) {
	s := newTestStore(t)

	topics, err := s.RecentTopics(context.Background(), 3)
	if err != nil {
		t.Fatalf("RecentTopics() error = %v", err)
	}
	if len(topics) != 0 {
		t.Fatalf("len(topics) = %d, want 0", len(topics))
	}
}
