// Package classify maps free text to a language and an intent using fixed
// vocabularies. Everything here is a pure function over immutable input so
// the conversation pipeline can be tested without I/O.
package classify

import "strings"

type Language string

const (
	LanguageEnglish  Language = "english"
	LanguageHindi    Language = "hindi"
	LanguageHinglish Language = "hinglish"
)

type Intent string

const (
	IntentGreeting Intent = "greeting"
	IntentFarewell Intent = "farewell"
	IntentMath     Intent = "math"
	IntentQuestion Intent = "question"
	IntentGeneral  Intent = "general"
)

const tokenPunctuation = ".,!?;:'\""

// A greeting word inside a longer utterance is usually not a greeting
// ("namaste, photosynthesis kya hai?" is a question).
const greetingMaxTokens = 6

var hindiMarkers = wordSet(
	"namaste", "namaskar", "kya", "hai", "hain", "nahi", "haan",
	"karo", "kuch", "mujhe", "tumhe", "aap", "tum", "main", "mera",
	"tera", "uska", "bahut", "accha", "theek", "kyun", "kaise",
	"kaun", "kab", "kahaan", "batao", "samjhao", "seekhna", "chahte",
	"alvida", "phir", "milenge", "shukriya", "dhanyavaad",
)

var (
	farewellWords = wordSet("bye", "goodbye", "goodnight", "cya", "alvida", "tata", "exit", "quit", "stop", "later")
	greetingWords = wordSet("hello", "hi", "hey", "namaste", "namaskar", "sup")
	mathWords     = wordSet("calculate", "solve", "math", "add", "subtract", "multiply", "divide",
		"plus", "minus", "times", "equals", "+", "-", "*", "/", "sum", "total")
	questionWords = wordSet("what", "why", "how", "when", "where", "who", "which", "explain",
		"describe", "kya", "kyun", "kaise", "kab", "kahaan", "kaun", "batao", "samjhao")

	// Multi-word phrases are specific enough for substring matching.
	farewellPhrases = []string{"good bye", "see you", "phir milenge", "good night", "band karo"}
	greetingPhrases = []string{"good morning", "good evening"}
	questionPhrases = []string{"tell me"}
)

// DetectLanguage counts Hindi-marker tokens: two or more reads as Hindi, a
// single one as Hinglish, none as English. It also returns the marker count
// for the pipeline trace.
func DetectLanguage(input string) (Language, int) {
	count := 0
	for word := range Tokenize(input) {
		if hindiMarkers[word] {
			count++
		}
	}
	switch {
	case count >= 2:
		return LanguageHindi, count
	case count == 1:
		return LanguageHinglish, count
	default:
		return LanguageEnglish, count
	}
}

// DetectIntent resolves every input to exactly one intent with precedence
// farewell > greeting > math > question > general.
//
// Single-word triggers match by exact token-set membership, never substring:
// "hi" must not fire inside "hindi".
func DetectIntent(input string) Intent {
	lowered := strings.ToLower(input)
	words := Tokenize(input)

	switch {
	case matches(words, lowered, farewellWords, farewellPhrases):
		return IntentFarewell
	case len(words) <= greetingMaxTokens && matches(words, lowered, greetingWords, greetingPhrases):
		return IntentGreeting
	case matches(words, lowered, mathWords, nil):
		return IntentMath
	case matches(words, lowered, questionWords, questionPhrases):
		return IntentQuestion
	default:
		return IntentGeneral
	}
}

// Tokenize splits input on whitespace, lower-cases, and strips punctuation
// runs from token edges, returning the set of distinct word tokens.
func Tokenize(input string) map[string]bool {
	words := make(map[string]bool)
	for _, field := range strings.Fields(strings.ToLower(input)) {
		word := strings.Trim(field, tokenPunctuation)
		if word != "" {
			words[word] = true
		}
	}
	return words
}

func matches(words map[string]bool, lowered string, single map[string]bool, phrases []string) bool {
	for w := range words {
		if single[w] {
			return true
		}
	}
	for _, p := range phrases {
		if strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
