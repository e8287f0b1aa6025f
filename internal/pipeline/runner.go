package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/antoniostano/maya/internal/brain"
	"github.com/antoniostano/maya/internal/classify"
	"github.com/antoniostano/maya/internal/memory"
	"github.com/antoniostano/maya/internal/observability"
	"github.com/antoniostano/maya/internal/prompt"
)

// FallbackReply answers a turn when the generator fails. The conversation
// always completes; a broken brain never aborts the pipeline.
const FallbackReply = "Hmm, I'm having a little trouble thinking right now! Let's try that again in a moment, okay?"

const (
	recentTopicsLimit  = 3
	persistTimeout     = 2 * time.Second
	loadSessionTimeout = 2 * time.Second
)

// Runner executes turns one at a time against a single session. It owns the
// conversation transcript and the session-scoped profile fields loaded at
// start. Not safe for concurrent sessions by design; the mutex only
// serializes callers sharing the one session (REPL plus HTTP surface).
type Runner struct {
	store   memory.Store
	adapter brain.Adapter
	metrics *observability.Metrics

	mu           sync.Mutex
	userName     string
	sessionID    int
	sessionCount int
	transcript   []brain.Message
	lastTrace    []string
	started      bool
}

func NewRunner(store memory.Store, adapter brain.Adapter, metrics *observability.Metrics, userName string) *Runner {
	if userName == "" {
		userName = memory.DefaultUserName
	}
	return &Runner{
		store:    store,
		adapter:  adapter,
		metrics:  metrics,
		userName: userName,
	}
}

// StartSession increments the durable session counter. Called once per
// process lifetime before any turn. A storage fault degrades to an
// in-process session rather than failing startup.
func (r *Runner) StartSession(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return r.sessionID, nil
	}

	count, err := r.store.StartSession(ctx)
	if err != nil {
		r.metrics.StoreErrors.WithLabelValues("start_session").Inc()
		r.sessionID = 1
		r.sessionCount = 1
		r.started = true
		return r.sessionID, fmt.Errorf("start session: %w", err)
	}

	r.sessionID = count
	r.sessionCount = count
	r.started = true
	r.metrics.SessionsStarted.Inc()
	return count, nil
}

// RunTurn executes one full exchange and returns the completed turn state.
// onDelta, when non-nil, receives generated text fragments as they stream.
//
// The returned error is reserved for context cancellation; every other
// fault is absorbed into the turn (fallback reply, PersistErr).
func (r *Runner) RunTurn(ctx context.Context, input string, onDelta brain.DeltaHandler) (*Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := &Turn{
		ID:        uuid.NewString(),
		InputText: input,
		UserName:  r.userName,
		SessionID: r.sessionID,
	}

	r.loadSession(ctx, t)
	r.classifyLanguage(t)
	r.classifyIntent(t)
	t.Handler = Route(t.Intent)
	t.note(fmt.Sprintf("[route] -> '%s'", t.Handler))

	// The user entry goes in before the handler runs so delegating
	// handlers see a transcript that ends with the current question.
	r.transcript = append(r.transcript, brain.Message{Role: brain.RoleUser, Content: input})

	if err := r.respond(ctx, t, onDelta); err != nil {
		// An aborted turn must not leave an unpaired user entry behind;
		// the transcript holds exactly two entries per completed turn.
		r.transcript = r.transcript[:len(r.transcript)-1]
		return nil, err
	}

	r.transcript = append(r.transcript, brain.Message{Role: brain.RoleAssistant, Content: t.ResponseText})
	t.Transcript = append([]brain.Message(nil), r.transcript...)

	r.persistTurn(ctx, t)

	r.metrics.TurnsTotal.WithLabelValues(string(t.Intent), string(t.Handler)).Inc()
	r.metrics.LanguagesTotal.WithLabelValues(string(t.Language)).Inc()
	r.lastTrace = append([]string(nil), t.Trace...)

	return t, nil
}

func (r *Runner) loadSession(ctx context.Context, t *Turn) {
	loadCtx, cancel := context.WithTimeout(ctx, loadSessionTimeout)
	defer cancel()

	// Read faults are not errors here: a missing or broken store still
	// yields a working conversation with default profile data.
	profile, err := r.store.Profile(loadCtx)
	if err != nil {
		r.metrics.StoreErrors.WithLabelValues("profile").Inc()
		profile = memory.Profile{UserName: r.userName, SessionCount: r.sessionCount}
	}
	topics, err := r.store.RecentTopics(loadCtx, recentTopicsLimit)
	if err != nil {
		r.metrics.StoreErrors.WithLabelValues("recent_topics").Inc()
		topics = nil
	}

	if profile.UserName != "" {
		t.UserName = profile.UserName
	}
	t.SessionCount = profile.SessionCount
	t.RecentTopics = topics

	t.note(fmt.Sprintf("[load_session] -> session_count=%d, %d recent topic(s)", t.SessionCount, len(topics)))
}

func (r *Runner) classifyLanguage(t *Turn) {
	t.Language, t.HindiMarkers = classify.DetectLanguage(t.InputText)
	t.note(fmt.Sprintf("[classify_language] -> '%s' (%d Hindi marker(s))", t.Language, t.HindiMarkers))
}

func (r *Runner) classifyIntent(t *Turn) {
	t.Intent = classify.DetectIntent(t.InputText)
	t.note(fmt.Sprintf("[classify_intent] -> '%s'", t.Intent))
}

func (r *Runner) respond(ctx context.Context, t *Turn, onDelta brain.DeltaHandler) error {
	switch t.Handler {
	case HandlerGreet:
		t.ResponseText = greetReply(t)
		t.note(fmt.Sprintf("[greet] -> greeting in '%s'", t.Language))
		return nil
	case HandlerFarewell:
		t.ResponseText = farewellReply(t, countUserTurns(r.transcript))
		t.note(fmt.Sprintf("[farewell] -> goodbye in '%s'", t.Language))
		return nil
	case HandlerMathTutor:
		return r.generate(ctx, t, prompt.MathTutor(t.Language), onDelta)
	default:
		return r.generate(ctx, t, prompt.General(t.Language, t.RecentTopics), onDelta)
	}
}

func (r *Runner) generate(ctx context.Context, t *Turn, system string, onDelta brain.DeltaHandler) error {
	start := time.Now()
	text, err := r.adapter.Generate(ctx, brain.Request{
		System:     system,
		Transcript: r.transcript,
	}, onDelta)
	r.metrics.ObserveBrainLatency(time.Since(start))

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil || text == "" {
		t.ResponseText = FallbackReply
		t.FallbackUsed = true
		r.metrics.BrainFallbacks.Inc()
		t.note(fmt.Sprintf("[%s] -> fallback (generator error: %v)", t.Handler, err))
		return nil
	}

	t.ResponseText = text
	t.note(fmt.Sprintf("[%s] -> language='%s'", t.Handler, t.Language))
	return nil
}

func (r *Runner) persistTurn(ctx context.Context, t *Turn) {
	// Greetings and goodbyes are control signals, not topics to recall
	// next session: no log entry, no total_turns increment.
	if t.Intent == classify.IntentFarewell || t.Intent == classify.IntentGreeting {
		t.note(fmt.Sprintf("[persist_turn] -> skipped (%s)", t.Intent))
		return
	}

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := r.store.LogTurn(persistCtx, t.InputText, string(t.Intent), t.SessionID); err != nil {
		t.PersistErr = fmt.Errorf("log turn: %w", err)
		r.metrics.StoreErrors.WithLabelValues("log_turn").Inc()
		t.note(fmt.Sprintf("[persist_turn] -> error: %v", err))
		return
	}
	t.note("[persist_turn] -> logged")
}

// Reset clears the durable store and the in-process transcript.
func (r *Runner) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Reset(ctx); err != nil {
		r.metrics.StoreErrors.WithLabelValues("reset").Inc()
		return fmt.Errorf("reset store: %w", err)
	}
	r.transcript = nil
	r.lastTrace = nil
	return nil
}

// ClearTranscript drops the in-process history without touching the store.
func (r *Runner) ClearTranscript() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcript = nil
}

// Transcript returns a copy of the accumulated session history.
func (r *Runner) Transcript() []brain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]brain.Message(nil), r.transcript...)
}

// LastTrace returns the stage notes of the most recent turn.
func (r *Runner) LastTrace() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lastTrace...)
}

func countUserTurns(transcript []brain.Message) int {
	n := 0
	for _, m := range transcript {
		if m.Role == brain.RoleUser {
			n++
		}
	}
	return n
}

// SessionID reports the durable session counter value for this run.
func (r *Runner) SessionID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}
