package voice

import (
	"context"
	"testing"
)

func TestMockProviderScriptedTranscriptions(t *testing.T) {
	p := NewMockProvider(
		Transcription{Text: "hello maya", Confidence: 0.9},
		Transcription{Text: "mumble", Confidence: 0.2},
	)
	ctx := context.Background()

	first, err := p.Listen(ctx, 5)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	if first.Text != "hello maya" || first.Confidence != 0.9 {
		t.Fatalf("first = %+v, want scripted transcription", first)
	}

	second, _ := p.Listen(ctx, 5)
	if second.Confidence >= MinConfidence {
		t.Fatalf("second.Confidence = %v, want below gate %v", second.Confidence, MinConfidence)
	}
}

func TestMockProviderRecordsSpeech(t *testing.T) {
	p := NewMockProvider()
	ctx := context.Background()

	if err := p.Say(ctx, "Hello! I'm MAYA"); err != nil {
		t.Fatalf("Say() error = %v", err)
	}
	spoken := p.Spoken()
	if len(spoken) != 1 || spoken[0] != "Hello! I'm MAYA" {
		t.Fatalf("Spoken() = %v, want one utterance", spoken)
	}
}

func TestLocalProviderRequiresSomeCLI(t *testing.T) {
	if _, err := NewLocalProvider(LocalConfig{}); err == nil {
		t.Fatalf("NewLocalProvider(empty) error = nil, want config error")
	}
	if _, err := NewLocalProvider(LocalConfig{TTSCLI: "espeak-ng"}); err != nil {
		t.Fatalf("NewLocalProvider(tts only) error = %v", err)
	}
}
