// Package assistant turns one transcribed utterance into one spoken reply.
package assistant

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"zara/internal/logging"
	"zara/internal/memory"
	"zara/internal/router"
)

// Journal records conversation turns.
type Journal interface {
	AppendTurn(ctx context.Context, role memory.Role, content string) (memory.Turn, error)
}

type Options struct {
	Router   *router.Router
	Journal  Journal
	WakeWord string
}

// Assistant serialises utterances from every entry point (control socket,
// listen loop, bus) so only one command runs at a time.
type Assistant struct {
	router  *router.Router
	journal Journal
	wake    string

	mu    sync.Mutex
	turns int
}

func New(opt Options) *Assistant {
	return &Assistant{
		router:  opt.Router,
		journal: opt.Journal,
		wake:    strings.ToLower(strings.TrimSpace(opt.WakeWord)),
	}
}

// Turn normalises transcript, dispatches it and records the exchange.
func (a *Assistant) Turn(ctx context.Context, transcript string) router.Reply {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.turns++
	l := logging.From(ctx).With("turn", a.turns)
	ctx = logging.With(ctx, l)

	cmd := Normalize(transcript, a.wake)
	l.Info("Heard", "raw", transcript, "cmd", cmd)

	reply := a.router.Dispatch(ctx, cmd)
	l.Info("Replying", "category", reply.Category, "status", reply.Status, "text", reply.Text)

	if cmd != "" {
		a.record(ctx, memory.RoleUser, cmd)
		a.record(ctx, memory.RoleAssistant, reply.Text)
	}
	return reply
}

func (a *Assistant) record(ctx context.Context, role memory.Role, content string) {
	if a.journal == nil {
		return
	}
	if _, err := a.journal.AppendTurn(ctx, role, content); err != nil {
		logging.From(ctx).Warn("Failed to record turn", "role", role, "err", err)
	}
}

// Normalize lower-cases s, drops punctuation that is not part of a path, URL
// or contraction, and removes the wake word together with a greeting in front
// of it.
func Normalize(s, wake string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
			b.WriteRune(r)
		case strings.ContainsRune(`./\:~_-@'`, r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimRight(f, ".'")
		f = strings.TrimLeft(f, "'")
		if f == "" {
			continue
		}
		if wake != "" && f == wake {
			if n := len(out); n > 0 && isGreeting(out[n-1]) {
				out = out[:n-1]
			}
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

func isGreeting(w string) bool {
	switch w {
	case "hey", "hi", "ok", "okay", "hello":
		return true
	}
	return false
}
