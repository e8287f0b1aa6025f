package brain

import (
	"context"
	"errors"
	"fmt"
)

// FallbackAdapter attempts a primary adapter first and falls back on error.
// Context cancellation is never retried against the fallback.
type FallbackAdapter struct {
	primary  Adapter
	fallback Adapter
}

func NewFallbackAdapter(primary, fallback Adapter) *FallbackAdapter {
	return &FallbackAdapter{primary: primary, fallback: fallback}
}

func (a *FallbackAdapter) Generate(ctx context.Context, req Request, onDelta DeltaHandler) (string, error) {
	if a.primary == nil {
		if a.fallback != nil {
			return a.fallback.Generate(ctx, req, onDelta)
		}
		return "", fmt.Errorf("fallback adapter misconfigured")
	}

	text, err := a.primary.Generate(ctx, req, onDelta)
	if err == nil {
		return text, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", err
	}
	if a.fallback == nil {
		return "", err
	}

	text, fallbackErr := a.fallback.Generate(ctx, req, onDelta)
	if fallbackErr != nil {
		return "", fmt.Errorf("primary adapter error: %w; fallback adapter error: %v", err, fallbackErr)
	}
	return text, nil
}
