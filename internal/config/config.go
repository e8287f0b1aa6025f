package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the MAYA companion.
type Config struct {
	UserName string

	MemoryBackend string
	DBPath        string
	DatabaseURL   string

	BrainMode     string
	BrainTimeout  time.Duration
	OllamaBaseURL string
	OllamaModel   string
	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string

	VoiceProvider string
	STTCLI        string
	STTModelPath  string
	TTSCLI        string
	ListenSeconds int

	HTTPAddr         string
	MetricsNamespace string
	ShutdownTimeout  time.Duration
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		UserName:         envOrDefault("MAYA_USER_NAME", "Srinika"),
		MemoryBackend:    strings.ToLower(envOrDefault("MAYA_MEMORY_BACKEND", "sqlite")),
		DBPath:           trimSpace(os.Getenv("MAYA_DB_PATH")),
		DatabaseURL:      trimSpace(os.Getenv("DATABASE_URL")),
		BrainMode:        strings.ToLower(envOrDefault("MAYA_BRAIN_MODE", "auto")),
		OllamaBaseURL:    envOrDefault("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:      envOrDefault("OLLAMA_MODEL", "llama3.2:3b"),
		OpenAIBaseURL:    trimSpace(os.Getenv("OPENAI_BASE_URL")),
		OpenAIAPIKey:     trimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:      envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		VoiceProvider:    strings.ToLower(envOrDefault("MAYA_VOICE_PROVIDER", "off")),
		STTCLI:           envOrDefault("MAYA_STT_CLI", "whisper-cli"),
		STTModelPath:     envOrDefault("MAYA_STT_MODEL_PATH", ".models/whisper/ggml-base.bin"),
		TTSCLI:           envOrDefault("MAYA_TTS_CLI", "espeak-ng"),
		ListenSeconds:    5,
		HTTPAddr:         trimSpace(os.Getenv("MAYA_HTTP_ADDR")),
		MetricsNamespace: envOrDefault("MAYA_METRICS_NAMESPACE", "maya"),
		BrainTimeout:     60 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}

	var err error
	cfg.BrainTimeout, err = durationFromEnv("MAYA_BRAIN_TIMEOUT", cfg.BrainTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ShutdownTimeout, err = durationFromEnv("MAYA_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ListenSeconds, err = intFromEnv("MAYA_LISTEN_SECONDS", cfg.ListenSeconds)
	if err != nil {
		return Config{}, err
	}

	if cfg.DBPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return Config{}, fmt.Errorf("resolve home dir for default db path: %w", homeErr)
		}
		cfg.DBPath = filepath.Join(home, ".maya", "memory.db")
	}

	switch cfg.MemoryBackend {
	case "sqlite", "postgres", "memory":
	default:
		return Config{}, fmt.Errorf("MAYA_MEMORY_BACKEND must be sqlite, postgres or memory, got %q", cfg.MemoryBackend)
	}
	if cfg.MemoryBackend == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("MAYA_MEMORY_BACKEND=postgres requires DATABASE_URL")
	}
	switch cfg.BrainMode {
	case "auto", "ollama", "openai", "mock":
	default:
		return Config{}, fmt.Errorf("MAYA_BRAIN_MODE must be auto, ollama, openai or mock, got %q", cfg.BrainMode)
	}
	switch cfg.VoiceProvider {
	case "off", "local", "mock":
	default:
		return Config{}, fmt.Errorf("MAYA_VOICE_PROVIDER must be off, local or mock, got %q", cfg.VoiceProvider)
	}
	if cfg.BrainMode == "openai" && cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
		return Config{}, fmt.Errorf("MAYA_BRAIN_MODE=openai requires OPENAI_API_KEY or OPENAI_BASE_URL")
	}
	if cfg.BrainTimeout < time.Second {
		return Config{}, fmt.Errorf("MAYA_BRAIN_TIMEOUT must be at least 1s")
	}
	if cfg.ListenSeconds <= 0 {
		return Config{}, fmt.Errorf("MAYA_LISTEN_SECONDS must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := trimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func trimSpace(v string) string {
	return strings.TrimSpace(v)
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}
