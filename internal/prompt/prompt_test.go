package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/antoniostano/maya/internal/classify"
)

func TestGeneralIncludesLanguageInstruction(t *testing.T) {
	p := General(classify.LanguageHinglish, nil)
	if !strings.Contains(p, "Hinglish") {
		t.Fatalf("hinglish prompt missing language instruction: %q", p)
	}

	p = General(classify.LanguageEnglish, nil)
	if !strings.Contains(p, "English only") {
		t.Fatalf("english prompt missing language instruction: %q", p)
	}
}

func TestGeneralFallsBackToEnglishInstruction(t *testing.T) {
	p := General(classify.Language("klingon"), nil)
	if !strings.Contains(p, "English only") {
		t.Fatalf("unknown language should fall back to english instruction")
	}
}

func TestGeneralInjectsAtMostTwoRecentTopics(t *testing.T) {
	topics := []string{"what is gravity", "how do rockets fly", "why is the sky blue"}
	p := General(classify.LanguageEnglish, topics)

	if !strings.Contains(p, "what is gravity") || !strings.Contains(p, "how do rockets fly") {
		t.Fatalf("prompt missing recent topic context: %q", p)
	}
	if strings.Contains(p, "why is the sky blue") {
		t.Fatalf("prompt should cap topic context at two entries")
	}
}

func TestGeneralTruncatesTopicsOnRuneBoundary(t *testing.T) {
	// Well over the topic cap, all multi-byte characters.
	topic := strings.Repeat("गुरुत्वाकर्षण", 10)
	p := General(classify.LanguageEnglish, []string{topic})
	if !utf8.ValidString(p) {
		t.Fatalf("prompt contains invalid UTF-8: %q", p)
	}
}

func TestMathTutorPrompt(t *testing.T) {
	p := MathTutor(classify.LanguageHindi)
	if !strings.Contains(p, "Math Tutor") {
		t.Fatalf("math prompt missing persona: %q", p)
	}
	if !strings.Contains(p, "Math steps in English") && !strings.Contains(p, "math steps in English") {
		t.Fatalf("hindi math prompt missing language instruction: %q", p)
	}
}
