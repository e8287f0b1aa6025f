package voice

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// LocalConfig configures the exec-based provider.
type LocalConfig struct {
	WhisperCLI       string
	WhisperModelPath string
	TTSCLI           string
}

// LocalProvider shells out to a whisper-style CLI for transcription and an
// espeak-style CLI for playback. Both tools are optional at runtime; a
// missing binary surfaces as an error on first use, not at construction.
type LocalProvider struct {
	cfg LocalConfig
}

func NewLocalProvider(cfg LocalConfig) (*LocalProvider, error) {
	if strings.TrimSpace(cfg.WhisperCLI) == "" && strings.TrimSpace(cfg.TTSCLI) == "" {
		return nil, fmt.Errorf("local voice provider needs at least one of stt/tts CLI configured")
	}
	return &LocalProvider{cfg: cfg}, nil
}

func (p *LocalProvider) Listen(ctx context.Context, seconds int) (Transcription, error) {
	cli := strings.TrimSpace(p.cfg.WhisperCLI)
	if cli == "" {
		return Transcription{}, fmt.Errorf("no stt CLI configured")
	}
	if seconds <= 0 {
		seconds = 5
	}

	args := []string{"--duration", strconv.Itoa(seconds * 1000), "--no-timestamps"}
	if strings.TrimSpace(p.cfg.WhisperModelPath) != "" {
		args = append(args, "--model", p.cfg.WhisperModelPath)
	}

	out, err := exec.CommandContext(ctx, cli, args...).Output()
	if err != nil {
		return Transcription{}, fmt.Errorf("run %s: %w", cli, err)
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return Transcription{Text: "", Confidence: 0}, nil
	}
	// The CLI reports no score; treat any non-empty transcript as usable.
	return Transcription{Text: text, Confidence: 0.7}, nil
}

func (p *LocalProvider) Say(ctx context.Context, text string) error {
	cli := strings.TrimSpace(p.cfg.TTSCLI)
	if cli == "" {
		return fmt.Errorf("no tts CLI configured")
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if err := exec.CommandContext(ctx, cli, text).Run(); err != nil {
		return fmt.Errorf("run %s: %w", cli, err)
	}
	return nil
}
