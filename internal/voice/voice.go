// Package voice holds the narrow seams to speech I/O. The conversation core
// only needs text in and text out; everything about microphones, models and
// playback stays behind these two interfaces.
package voice

import "context"

// Transcription is the result of one listening window.
type Transcription struct {
	Text       string
	Confidence float64
}

// MinConfidence gates transcriptions: below this the REPL re-prompts
// instead of feeding garbage into the pipeline.
const MinConfidence = 0.4

// Transcriber records for roughly the given duration and returns the
// recognized text with a confidence score.
type Transcriber interface {
	Listen(ctx context.Context, seconds int) (Transcription, error)
}

// Speaker voices a response. Fire-and-forget from the core's perspective:
// a playback error is reported but never alters the conversation.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// Provider bundles both directions of speech I/O.
type Provider interface {
	Transcriber
	Speaker
}
