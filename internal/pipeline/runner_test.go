package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/antoniostano/maya/internal/brain"
	"github.com/antoniostano/maya/internal/classify"
	"github.com/antoniostano/maya/internal/memory"
	"github.com/antoniostano/maya/internal/observability"
)

type stubBrain struct {
	reply string
	err   error
	calls int
}

func (s *stubBrain) Generate(_ context.Context, req brain.Request, onDelta brain.DeltaHandler) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if onDelta != nil {
		if err := onDelta(s.reply); err != nil {
			return "", err
		}
	}
	return s.reply, nil
}

func newTestRunner(t *testing.T, adapter brain.Adapter) (*Runner, *memory.InMemoryStore) {
	t.Helper()
	store := memory.NewInMemoryStore("")
	metrics := observability.NewMetrics(fmt.Sprintf("maya_test_%s_%d", sanitize(t.Name()), time.Now().UnixNano()))
	return NewRunner(store, adapter, metrics, ""), store
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

func TestRunTurnGreeting(t *testing.T) {
	generator := &stubBrain{reply: "should not be used"}
	r, store := newTestRunner(t, generator)
	ctx := context.Background()

	if _, err := r.StartSession(ctx); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	turn, err := r.RunTurn(ctx, "Hello", nil)
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}

	if turn.Language != classify.LanguageEnglish {
		t.Fatalf("Language = %v, want english", turn.Language)
	}
	if turn.Intent != classify.IntentGreeting {
		t.Fatalf("Intent = %v, want greeting", turn.Intent)
	}
	if turn.Handler != HandlerGreet {
		t.Fatalf("Handler = %v, want greet", turn.Handler)
	}
	if generator.calls != 0 {
		t.Fatalf("generator calls = %d, want 0 for canned greeting", generator.calls)
	}

	// Greetings are not topics: nothing logged, counter unchanged.
	p, _ := store.Profile(ctx)
	if p.TotalTurns != 0 {
		t.Fatalf("TotalTurns = %d, want 0 after greeting", p.TotalTurns)
	}
	topics, _ := store.RecentTopics(ctx, 3)
	if len(topics) != 0 {
		t.Fatalf("topics = %v, want none after greeting", topics)
	}
}

func TestRunTurnFarewellSkipsPersist(t *testing.T) {
	r, store := newTestRunner(t, &stubBrain{reply: "unused"})
	ctx := context.Background()
	r.StartSession(ctx)

	turn, err := r.RunTurn(ctx, "bye", nil)
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if turn.Intent != classify.IntentFarewell || turn.Handler != HandlerFarewell {
		t.Fatalf("turn = %v/%v, want farewell/farewell", turn.Intent, turn.Handler)
	}

	p, _ := store.Profile(ctx)
	if p.TotalTurns != 0 {
		t.Fatalf("TotalTurns = %d, want 0 after farewell", p.TotalTurns)
	}
	topics, _ := store.RecentTopics(ctx, 3)
	if len(topics) != 0 {
		t.Fatalf("topics = %v, want none after farewell", topics)
	}
}

func TestRunTurnHindiQuestionRoutesToGeneralHelp(t *testing.T) {
	generator := &stubBrain{reply: "Gravity ek force hai jo sab kuch neeche kheenchti hai!"}
	r, store := newTestRunner(t, generator)
	ctx := context.Background()
	r.StartSession(ctx)

	turn, err := r.RunTurn(ctx, "kya hai gravity", nil)
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if turn.Language != classify.LanguageHindi {
		t.Fatalf("Language = %v, want hindi", turn.Language)
	}
	if turn.Intent != classify.IntentQuestion {
		t.Fatalf("Intent = %v, want question", turn.Intent)
	}
	if turn.Handler != HandlerGeneralHelp {
		t.Fatalf("Handler = %v, want general_help", turn.Handler)
	}
	if turn.ResponseText != generator.reply {
		t.Fatalf("ResponseText = %q, want generator reply", turn.ResponseText)
	}

	topics, _ := store.RecentTopics(ctx, 3)
	if len(topics) != 1 || topics[0] != "kya hai gravity" {
		t.Fatalf("topics = %v, want the question logged", topics)
	}
	p, _ := store.Profile(ctx)
	if p.TotalTurns != 1 {
		t.Fatalf("TotalTurns = %d, want 1", p.TotalTurns)
	}
}

func TestRunTurnMathRoutesToMathTutor(t *testing.T) {
	generator := &stubBrain{reply: "2 plus 2 is 4. Try 3 plus 3!"}
	r, _ := newTestRunner(t, generator)
	ctx := context.Background()
	r.StartSession(ctx)

	turn, err := r.RunTurn(ctx, "solve 2 plus 2", nil)
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if turn.Handler != HandlerMathTutor {
		t.Fatalf("Handler = %v, want math_tutor", turn.Handler)
	}
	if generator.calls != 1 {
		t.Fatalf("generator calls = %d, want 1", generator.calls)
	}
}

func TestRunTurnGeneratorFailureUsesFallback(t *testing.T) {
	r, store := newTestRunner(t, &stubBrain{err: fmt.Errorf("brain unreachable")})
	ctx := context.Background()
	r.StartSession(ctx)

	turn, err := r.RunTurn(ctx, "what is gravity", nil)
	if err != nil {
		t.Fatalf("RunTurn() error = %v, want graceful degradation", err)
	}
	if turn.ResponseText != FallbackReply {
		t.Fatalf("ResponseText = %q, want fallback reply", turn.ResponseText)
	}
	if !turn.FallbackUsed {
		t.Fatalf("FallbackUsed = false, want true")
	}

	// The turn is still logged even when generation failed.
	topics, _ := store.RecentTopics(ctx, 3)
	if len(topics) != 1 {
		t.Fatalf("topics = %v, want failed-generation turn logged", topics)
	}
}

func TestTranscriptGrowsByTwoPerTurn(t *testing.T) {
	r, _ := newTestRunner(t, &stubBrain{reply: "answer"})
	ctx := context.Background()
	r.StartSession(ctx)

	inputs := []string{"what is gravity", "why is the sky blue", "how do rockets fly"}
	for i, input := range inputs {
		turn, err := r.RunTurn(ctx, input, nil)
		if err != nil {
			t.Fatalf("RunTurn(%q) error = %v", input, err)
		}
		want := 2 * (i + 1)
		if len(turn.Transcript) != want {
			t.Fatalf("transcript length after turn %d = %d, want %d", i+1, len(turn.Transcript), want)
		}
	}

	transcript := r.Transcript()
	for i, m := range transcript {
		wantRole := brain.RoleUser
		if i%2 == 1 {
			wantRole = brain.RoleAssistant
		}
		if m.Role != wantRole {
			t.Fatalf("transcript[%d].Role = %q, want %q", i, m.Role, wantRole)
		}
	}
	if transcript[0].Content != inputs[0] || transcript[4].Content != inputs[2] {
		t.Fatalf("transcript out of chronological order: %v", transcript)
	}
}

// cancelingBrain cancels the turn context on its first call and succeeds
// afterwards, modelling a client that hangs up mid-generation.
type cancelingBrain struct {
	cancel context.CancelFunc
	reply  string
}

func (b *cancelingBrain) Generate(ctx context.Context, _ brain.Request, _ brain.DeltaHandler) (string, error) {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
		return "", ctx.Err()
	}
	return b.reply, nil
}

func TestRunTurnCanceledLeavesNoUnpairedEntry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r, _ := newTestRunner(t, &cancelingBrain{cancel: cancel, reply: "answer"})
	r.StartSession(context.Background())

	if _, err := r.RunTurn(ctx, "what is gravity", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("RunTurn() error = %v, want context.Canceled", err)
	}
	if got := r.Transcript(); len(got) != 0 {
		t.Fatalf("transcript after canceled turn = %d entries, want 0: %v", len(got), got)
	}

	// The next turn must still pair user and assistant entries cleanly.
	turn, err := r.RunTurn(context.Background(), "why is the sky blue", nil)
	if err != nil {
		t.Fatalf("RunTurn() after cancellation error = %v", err)
	}
	if len(turn.Transcript) != 2 {
		t.Fatalf("transcript after 1 completed turn = %d entries, want 2", len(turn.Transcript))
	}
	if turn.Transcript[0].Role != brain.RoleUser || turn.Transcript[1].Role != brain.RoleAssistant {
		t.Fatalf("transcript roles = %v, want user then assistant", turn.Transcript)
	}
}

// faultStore injects storage faults around the in-memory store.
type faultStore struct {
	*memory.InMemoryStore
	failWrites bool
	failReads  bool
}

func (s *faultStore) LogTurn(ctx context.Context, message, intent string, sessionID int) error {
	if s.failWrites {
		return fmt.Errorf("disk full")
	}
	return s.InMemoryStore.LogTurn(ctx, message, intent, sessionID)
}

func (s *faultStore) Profile(ctx context.Context) (memory.Profile, error) {
	if s.failReads {
		return memory.Profile{}, fmt.Errorf("profile read fault")
	}
	return s.InMemoryStore.Profile(ctx)
}

func (s *faultStore) RecentTopics(ctx context.Context, limit int) ([]string, error) {
	if s.failReads {
		return nil, fmt.Errorf("topics read fault")
	}
	return s.InMemoryStore.RecentTopics(ctx, limit)
}

func TestRunTurnWriteFaultSurfacesPersistErr(t *testing.T) {
	store := &faultStore{InMemoryStore: memory.NewInMemoryStore(""), failWrites: true}
	metrics := observability.NewMetrics(fmt.Sprintf("maya_test_writefault_%d", time.Now().UnixNano()))
	r := NewRunner(store, &stubBrain{reply: "an answer"}, metrics, "")
	ctx := context.Background()
	r.StartSession(ctx)

	turn, err := r.RunTurn(ctx, "what is gravity", nil)
	if err != nil {
		t.Fatalf("RunTurn() error = %v, want completed turn despite write fault", err)
	}
	if turn.PersistErr == nil {
		t.Fatalf("PersistErr = nil, want the write fault surfaced")
	}
	if turn.ResponseText != "an answer" {
		t.Fatalf("ResponseText = %q, want generator reply", turn.ResponseText)
	}
	if len(turn.Transcript) != 2 {
		t.Fatalf("transcript = %d entries, want 2 for the completed turn", len(turn.Transcript))
	}
}

func TestRunTurnReadFaultDegradesToDefaults(t *testing.T) {
	store := &faultStore{InMemoryStore: memory.NewInMemoryStore(""), failReads: true}
	metrics := observability.NewMetrics(fmt.Sprintf("maya_test_readfault_%d", time.Now().UnixNano()))
	r := NewRunner(store, &stubBrain{reply: "unused"}, metrics, "")
	ctx := context.Background()
	r.StartSession(ctx)

	turn, err := r.RunTurn(ctx, "Hello", nil)
	if err != nil {
		t.Fatalf("RunTurn() error = %v, want completed turn despite read fault", err)
	}
	if turn.UserName != memory.DefaultUserName {
		t.Fatalf("UserName = %q, want default on read fault", turn.UserName)
	}
	if !strings.Contains(turn.ResponseText, "MAYA") {
		t.Fatalf("ResponseText = %q, want full greeting despite read fault", turn.ResponseText)
	}
}

func TestRunTurnStreamsDeltas(t *testing.T) {
	r, _ := newTestRunner(t, &stubBrain{reply: "streamed answer"})
	ctx := context.Background()
	r.StartSession(ctx)

	var got []string
	_, err := r.RunTurn(ctx, "what is gravity", func(d string) error {
		got = append(got, d)
		return nil
	})
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if len(got) != 1 || got[0] != "streamed answer" {
		t.Fatalf("deltas = %v, want streamed reply", got)
	}
}

func TestStartSessionIncrementsAcrossRunners(t *testing.T) {
	store := memory.NewInMemoryStore("")
	metrics := observability.NewMetrics(fmt.Sprintf("maya_test_sessions_%d", time.Now().UnixNano()))

	r1 := NewRunner(store, &stubBrain{reply: "x"}, metrics, "")
	first, err := r1.StartSession(context.Background())
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	// A second runner over the same store models a process restart.
	r2 := NewRunner(store, &stubBrain{reply: "x"}, metrics, "")
	second, err := r2.StartSession(context.Background())
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if second != first+1 {
		t.Fatalf("second session = %d, want %d", second, first+1)
	}
}

func TestWelcomeBackGreetingRecallsLastTopic(t *testing.T) {
	store := memory.NewInMemoryStore("")
	metrics := observability.NewMetrics(fmt.Sprintf("maya_test_welcome_%d", time.Now().UnixNano()))
	ctx := context.Background()

	// First session asks a question.
	r1 := NewRunner(store, &stubBrain{reply: "answer"}, metrics, "")
	r1.StartSession(ctx)
	if _, err := r1.RunTurn(ctx, "what is gravity", nil); err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}

	// Second session greets and should get a personalised welcome.
	r2 := NewRunner(store, &stubBrain{reply: "answer"}, metrics, "")
	r2.StartSession(ctx)
	turn, err := r2.RunTurn(ctx, "Hello", nil)
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if !strings.Contains(turn.ResponseText, "Welcome back") {
		t.Fatalf("ResponseText = %q, want welcome-back variant", turn.ResponseText)
	}
	if !strings.Contains(turn.ResponseText, "what is gravity") {
		t.Fatalf("ResponseText = %q, want last topic recalled", turn.ResponseText)
	}
}

func TestResetClearsStoreAndTranscript(t *testing.T) {
	r, store := newTestRunner(t, &stubBrain{reply: "answer"})
	ctx := context.Background()
	r.StartSession(ctx)
	r.RunTurn(ctx, "what is gravity", nil)

	if err := r.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if len(r.Transcript()) != 0 {
		t.Fatalf("transcript after reset = %v, want empty", r.Transcript())
	}
	p, _ := store.Profile(ctx)
	if p.TotalTurns != 0 || p.SessionCount != 0 {
		t.Fatalf("profile after reset = %+v, want zero counts", p)
	}
}

func TestRouteMapping(t *testing.T) {
	cases := []struct {
		intent classify.Intent
		want   Handler
	}{
		{classify.IntentGreeting, HandlerGreet},
		{classify.IntentFarewell, HandlerFarewell},
		{classify.IntentMath, HandlerMathTutor},
		{classify.IntentQuestion, HandlerGeneralHelp},
		{classify.IntentGeneral, HandlerGeneralHelp},
		{classify.Intent("unknown"), HandlerGeneralHelp},
	}
	for _, tc := range cases {
		if got := Route(tc.intent); got != tc.want {
			t.Fatalf("Route(%v) = %v, want %v", tc.intent, got, tc.want)
		}
	}
}
