package brain

import (
	"context"
	"fmt"
	"strings"
)

// MockAdapter provides deterministic local replies when no generator is
// reachable. Useful for tests and for running the REPL fully offline.
type MockAdapter struct{}

func NewMockAdapter() *MockAdapter { return &MockAdapter{} }

func (a *MockAdapter) Generate(ctx context.Context, req Request, onDelta DeltaHandler) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	text := buildMockReply(req)
	if onDelta != nil && text != "" {
		if err := onDelta(text); err != nil {
			return "", err
		}
	}
	return text, nil
}

func buildMockReply(req Request) string {
	input := lastUserMessage(req.Transcript)
	if input == "" {
		return "I am listening. What would you like to explore?"
	}
	return fmt.Sprintf("That's a great question about %q! Let's figure it out together - what do you already know about it?", input)
}

func lastUserMessage(transcript []Message) string {
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Role == RoleUser {
			return strings.TrimSpace(transcript[i].Content)
		}
	}
	return ""
}
