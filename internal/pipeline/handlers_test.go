package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/antoniostano/maya/internal/classify"
)

func TestTruncateForSpeechKeepsRunesIntact(t *testing.T) {
	topic := strings.Repeat("गुरुत्वाकर्षण ", 10)
	got := truncateForSpeech(topic, 60)
	if !utf8.ValidString(got) {
		t.Fatalf("truncateForSpeech produced invalid UTF-8: %q", got)
	}
	if utf8.RuneCountInString(got) != 60 {
		t.Fatalf("rune count = %d, want 60", utf8.RuneCountInString(got))
	}

	if got := truncateForSpeech("short", 60); got != "short" {
		t.Fatalf("truncateForSpeech(short) = %q, want unchanged", got)
	}
}

func TestGreetReplyWelcomeBackWithMultibyteTopic(t *testing.T) {
	turn := &Turn{
		Language:     classify.LanguageEnglish,
		UserName:     "Srinika",
		SessionCount: 2,
		RecentTopics: []string{strings.Repeat("सितारे कैसे चमकते हैं ", 8)},
	}
	got := greetReply(turn)
	if !utf8.ValidString(got) {
		t.Fatalf("greetReply produced invalid UTF-8: %q", got)
	}
	if !strings.Contains(got, "Welcome back") {
		t.Fatalf("greetReply = %q, want welcome-back variant", got)
	}
}
