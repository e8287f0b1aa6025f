package voice

import (
	"context"
	"sync"
)

// MockProvider is a scriptable provider for tests and voiceless hosts.
type MockProvider struct {
	mu      sync.Mutex
	scripts []Transcription
	spoken  []string
}

func NewMockProvider(scripts ...Transcription) *MockProvider {
	return &MockProvider{scripts: scripts}
}

func (p *MockProvider) Listen(ctx context.Context, _ int) (Transcription, error) {
	select {
	case <-ctx.Done():
		return Transcription{}, ctx.Err()
	default:
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.scripts) == 0 {
		return Transcription{Text: "simulated voice input", Confidence: 0.7}, nil
	}
	next := p.scripts[0]
	p.scripts = p.scripts[1:]
	return next, nil
}

func (p *MockProvider) Say(ctx context.Context, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.spoken = append(p.spoken, text)
	return nil
}

// Spoken returns everything Say has voiced so far.
func (p *MockProvider) Spoken() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.spoken...)
}
