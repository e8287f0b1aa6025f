package pipeline

import "github.com/antoniostano/maya/internal/classify"

// Handler identifies the branch that answers a turn.
type Handler string

const (
	HandlerGreet       Handler = "greet"
	HandlerFarewell    Handler = "farewell"
	HandlerMathTutor   Handler = "math_tutor"
	HandlerGeneralHelp Handler = "general_help"
)

// Route maps an intent to its handler. Pure and total: every intent
// resolves to exactly one handler, unknowns fall through to general help.
// Adding an intent means one vocabulary entry, one case here, one handler.
func Route(intent classify.Intent) Handler {
	switch intent {
	case classify.IntentGreeting:
		return HandlerGreet
	case classify.IntentFarewell:
		return HandlerFarewell
	case classify.IntentMath:
		return HandlerMathTutor
	default:
		return HandlerGeneralHelp
	}
}
