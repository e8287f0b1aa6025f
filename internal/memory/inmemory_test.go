package memory

import (
	"context"
	"testing"
)

func TestInMemoryRoundTrip(t *testing.T) {
	s := NewInMemoryStore("Srinika")
	ctx := context.Background()

	id, err := s.StartSession(ctx)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if id != 1 {
		t.Fatalf("session id = %d, want 1", id)
	}

	if err := s.LogTurn(ctx, "what is gravity", "question", id); err != nil {
		t.Fatalf("LogTurn() error = %v", err)
	}
	if err := s.LogTurn(ctx, "solve 2 plus 2", "math", id); err != nil {
		t.Fatalf("LogTurn() error = %v", err)
	}

	topics, err := s.RecentTopics(ctx, 3)
	if err != nil {
		t.Fatalf("RecentTopics() error = %v", err)
	}
	if len(topics) != 2 || topics[0] != "solve 2 plus 2" {
		t.Fatalf("topics = %v, want most-recent-first", topics)
	}

	p, _ := s.Profile(ctx)
	if p.TotalTurns != 2 || p.SessionCount != 1 {
		t.Fatalf("profile = %+v, want 2 turns / 1 session", p)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	p, _ = s.Profile(ctx)
	if p.TotalTurns != 0 || p.SessionCount != 0 {
		t.Fatalf("profile after reset = %+v, want zero counts", p)
	}
}
