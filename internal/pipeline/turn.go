// Package pipeline sequences one conversational exchange: load session,
// classify, route, generate, persist. Stages communicate only through the
// Turn state; no stage keeps private state between turns.
package pipeline

import (
	"github.com/antoniostano/maya/internal/brain"
	"github.com/antoniostano/maya/internal/classify"
)

// Turn is the per-exchange state. It is owned by the runner while the turn
// executes and returned to the caller as a snapshot afterwards.
type Turn struct {
	ID        string
	InputText string

	Language     classify.Language
	HindiMarkers int
	Intent       classify.Intent
	Handler      Handler

	ResponseText string
	FallbackUsed bool

	// Session-scoped fields injected at load time.
	UserName     string
	SessionCount int
	RecentTopics []string
	SessionID    int

	// Transcript is the accumulated session history including this turn's
	// user and assistant entries, in arrival order.
	Transcript []brain.Message

	// Trace collects human-readable stage notes. Diagnostics only; no
	// logic ever reads it.
	Trace []string

	// PersistErr carries a storage write fault. The turn still completed
	// and produced a response; the caller may retry or ignore.
	PersistErr error
}

func (t *Turn) note(entry string) {
	t.Trace = append(t.Trace, entry)
}

// UserTurns counts user entries in the transcript.
func (t *Turn) UserTurns() int {
	n := 0
	for _, m := range t.Transcript {
		if m.Role == brain.RoleUser {
			n++
		}
	}
	return n
}
