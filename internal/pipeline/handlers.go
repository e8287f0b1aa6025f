package pipeline

import (
	"fmt"

	"github.com/antoniostano/maya/internal/classify"
)

// Canned replies for greet and farewell. These never touch the generator:
// a hello should work even with the brain offline.

func greetReply(t *Turn) string {
	if t.SessionCount > 1 && len(t.RecentTopics) > 0 {
		lastTopic := truncateForSpeech(t.RecentTopics[0], 60)
		switch t.Language {
		case classify.LanguageHindi:
			return fmt.Sprintf(
				"Wapas aa gayi %s! Kitna accha laga (session %d)!\nPichhli baar tumne poochha tha: %q.\nAaj kya seekhna chahti ho?",
				t.UserName, t.SessionCount, lastTopic)
		case classify.LanguageHinglish:
			return fmt.Sprintf(
				"Welcome back %s! Bahut accha laga (session %d)!\nLast time tumne pucha tha: %q.\nAaj kya explore karna hai?",
				t.UserName, t.SessionCount, lastTopic)
		default:
			return fmt.Sprintf(
				"Welcome back, %s! Great to see you again (session %d)!\nLast time you asked about: %q.\nWhat shall we explore today?",
				t.UserName, t.SessionCount, lastTopic)
		}
	}

	switch t.Language {
	case classify.LanguageHindi:
		return "Namaste! Main MAYA hun - aapka bilingual STEM saathi!\nMain aapko Science, Technology, Engineering aur Math mein help kar sakti hun.\nAaj kya seekhna chahte hain?"
	case classify.LanguageHinglish:
		return "Hello! Main MAYA hun - tumhara bilingual STEM companion!\nScience, Math, Technology - sab mein main help karungi!\nKya seekhna chahte ho aaj?"
	default:
		return "Hello! I'm MAYA - your bilingual STEM companion!\nI can help you explore Science, Technology, Engineering and Math.\nWhat would you like to learn today?"
	}
}

func farewellReply(t *Turn, turns int) string {
	switch t.Language {
	case classify.LanguageHindi:
		return fmt.Sprintf(
			"Alvida! Aaj aapse baat karke bahut accha laga (%d turns).\nJab bhi kuch seekhna ho, wapas aana! Phir milenge!", turns)
	case classify.LanguageHinglish:
		return fmt.Sprintf(
			"Goodbye! Aaj bahut maza aaya tumse baat karke (%d turns).\nKuch bhi seekhna ho toh wapas aana! Phir milenge!", turns)
	default:
		return fmt.Sprintf(
			"Goodbye! It was wonderful talking with you today (%d turns).\nCome back whenever you want to learn something new! See you soon!", turns)
	}
}

// truncateForSpeech cuts on a rune boundary; topics are user-entered text
// and a byte slice could split a multi-byte character.
func truncateForSpeech(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
