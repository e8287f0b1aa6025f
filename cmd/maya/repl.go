package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/antoniostano/maya/internal/brain"
	"github.com/antoniostano/maya/internal/classify"
	"github.com/antoniostano/maya/internal/pipeline"
	"github.com/antoniostano/maya/internal/voice"
)

const banner = `
  __  __    _ __   __ _
 |  \/  |  / \\ \ / // \
 | |\/| | / _ \\ V // _ \
 | |  | |/ ___ \| |/ ___ \
 |_|  |_/_/   \_\_/_/   \_\

 your bilingual STEM buddy
`

type repl struct {
	runner        *pipeline.Runner
	speech        voice.Provider
	listenSeconds int
	sessionID     int

	showTrace bool
	voiceOn   bool
}

func newREPL(runner *pipeline.Runner, speech voice.Provider, listenSeconds, sessionID int) *repl {
	return &repl{
		runner:        runner,
		speech:        speech,
		listenSeconds: listenSeconds,
		sessionID:     sessionID,
	}
}

func (r *repl) run(ctx context.Context) {
	fmt.Print(banner)
	fmt.Printf("session #%d | type !help for commands\n\n", r.sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if ctx.Err() != nil {
			fmt.Println("\nbye!")
			return
		}

		input, ok := r.nextInput(ctx, scanner)
		if !ok {
			fmt.Println("\nbye!")
			return
		}
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "!") {
			if r.command(ctx, input) {
				return
			}
			continue
		}

		turn, err := r.runner.RunTurn(ctx, input, func(delta string) error {
			fmt.Print(delta)
			return nil
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				fmt.Println("\nbye!")
				return
			}
			fmt.Printf("turn failed: %v\n", err)
			continue
		}

		// Canned handlers produce no deltas; print the reply ourselves.
		if turn.Handler == pipeline.HandlerGreet || turn.Handler == pipeline.HandlerFarewell || turn.FallbackUsed {
			fmt.Print(turn.ResponseText)
		}
		fmt.Print("\n\n")

		if r.voiceOn && r.speech != nil {
			if err := r.speech.Say(ctx, turn.ResponseText); err != nil {
				fmt.Printf("(tts failed: %v)\n", err)
			}
		}
		if turn.PersistErr != nil {
			fmt.Printf("(memory write failed, this turn won't be remembered: %v)\n", turn.PersistErr)
		}
		if r.showTrace {
			printTrace(turn.Trace)
		}

		if turn.Intent == classify.IntentFarewell {
			fmt.Printf("session #%d over: %d question(s) this time. see you soon!\n", r.sessionID, turn.UserTurns())
			return
		}
	}
}

// nextInput reads one utterance, from the microphone when voice mode is on
// and from stdin otherwise. ok is false when the input stream is done.
func (r *repl) nextInput(ctx context.Context, scanner *bufio.Scanner) (string, bool) {
	if r.voiceOn && r.speech != nil {
		fmt.Printf("listening (%ds)...\n", r.listenSeconds)
		tr, err := r.speech.Listen(ctx, r.listenSeconds)
		if err != nil {
			fmt.Printf("(stt failed: %v, falling back to keyboard)\n", err)
			r.voiceOn = false
		} else if tr.Confidence < voice.MinConfidence || strings.TrimSpace(tr.Text) == "" {
			fmt.Println("sorry, I didn't catch that. one more time?")
			return "", true
		} else {
			fmt.Printf("you said: %s\n", tr.Text)
			return strings.TrimSpace(tr.Text), true
		}
	}

	fmt.Print("you> ")
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}

// command handles a !-prefixed REPL command. It returns true when the loop
// should exit.
func (r *repl) command(ctx context.Context, input string) bool {
	switch strings.ToLower(input) {
	case "!help":
		fmt.Println("!history  show the session transcript")
		fmt.Println("!trace    toggle per-turn stage traces")
		fmt.Println("!clear    wipe history and stored memory")
		fmt.Println("!voice    toggle voice mode")
		fmt.Println("!quit     exit")
	case "!history":
		transcript := r.runner.Transcript()
		if len(transcript) == 0 {
			fmt.Println("(no history yet)")
			return false
		}
		for _, m := range transcript {
			who := "maya"
			if m.Role == brain.RoleUser {
				who = "you"
			}
			fmt.Printf("%s> %s\n", who, m.Content)
		}
	case "!trace":
		r.showTrace = !r.showTrace
		fmt.Printf("trace %s\n", onOff(r.showTrace))
		if r.showTrace {
			printTrace(r.runner.LastTrace())
		}
	case "!clear":
		if err := r.runner.Reset(ctx); err != nil {
			fmt.Printf("clear failed: %v\n", err)
			return false
		}
		fmt.Println("memory cleared, fresh start!")
	case "!voice":
		if r.speech == nil {
			fmt.Println("no voice provider configured (set MAYA_VOICE_PROVIDER)")
			return false
		}
		r.voiceOn = !r.voiceOn
		fmt.Printf("voice mode %s\n", onOff(r.voiceOn))
	case "!quit", "!exit":
		fmt.Println("bye!")
		return true
	default:
		fmt.Printf("unknown command %q, try !help\n", input)
	}
	return false
}

func printTrace(trace []string) {
	if len(trace) == 0 {
		fmt.Println("(no trace yet)")
		return
	}
	for _, line := range trace {
		fmt.Printf("  %s\n", line)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
