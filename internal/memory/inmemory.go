package memory

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is a simple in-process store for tests and throwaway runs.
type InMemoryStore struct {
	mu      sync.Mutex
	profile Profile
	topics  []TopicEntry
	nextID  int64
}

func NewInMemoryStore(userName string) *InMemoryStore {
	return &InMemoryStore{
		profile: defaultProfile(userName),
		nextID:  1,
	}
}

func (s *InMemoryStore) StartSession(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.SessionCount++
	return s.profile.SessionCount, nil
}

func (s *InMemoryStore) Profile(_ context.Context) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, nil
}

func (s *InMemoryStore) RecentTopics(_ context.Context, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 3
	}
	if limit > len(s.topics) {
		limit = len(s.topics)
	}
	out := make([]string, 0, limit)
	for i := len(s.topics) - 1; i >= len(s.topics)-limit; i-- {
		out = append(out, s.topics[i].Message)
	}
	return out, nil
}

func (s *InMemoryStore) LogTurn(_ context.Context, message, intent string, sessionID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics = append(s.topics, TopicEntry{
		ID:        s.nextID,
		SessionID: sessionID,
		Message:   message,
		Intent:    intent,
		Timestamp: time.Now().UTC(),
	})
	s.nextID++
	s.profile.TotalTurns++
	return nil
}

func (s *InMemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := s.profile.UserName
	s.profile = defaultProfile(name)
	s.topics = nil
	s.nextID = 1
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
