// Package router maps a normalised transcript onto exactly one capability
// handler. Rules are tried in order and the first match wins; anything that
// matches nothing goes to the fallback handler verbatim.
package router

import (
	"context"
	"errors"
	"strings"

	"zara/internal/logging"
)

type Category string

const (
	CategoryAI        Category = "ai"
	CategoryExit      Category = "exit"
	CategoryRemember  Category = "remember"
	CategoryRecall    Category = "recall"
	CategoryTime      Category = "time"
	CategoryDate      Category = "date"
	CategoryDay       Category = "day"
	CategoryWeather   Category = "weather"
	CategoryNews      Category = "news"
	CategoryWikipedia Category = "wikipedia"
	CategoryYouTube   Category = "youtube"
	CategoryJoke      Category = "joke"
	CategorySearch    Category = "search"
	CategoryOpen      Category = "open"
	CategoryEmail     Category = "email"
	CategoryVision    Category = "vision"
	CategoryFallback  Category = "fallback"
	CategoryNone      Category = ""
)

type Status string

const (
	StatusOK            Status = "ok"
	StatusFailed        Status = "failed"
	StatusNotFound      Status = "not_found"
	StatusNotUnderstood Status = "not_understood"
)

const (
	ApologyText       = "Sorry, I couldn't do that right now."
	NotUnderstoodText = "Sorry, I didn't catch that."
)

// ErrNotFound marks a failure that is a resolution miss rather than a broken
// collaborator. Handlers wrap it; the error text is spoken as is.
var ErrNotFound = errors.New("not found")

type Request struct {
	Category Category
	Command  string
	Payload  string
}

type Handler interface {
	Handle(ctx context.Context, req Request) (string, error)
}

type HandlerFunc func(ctx context.Context, req Request) (string, error)

func (f HandlerFunc) Handle(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

type Rule struct {
	Category Category
	Match    Matcher
	Handler  Handler
	// Exit asks the caller to stop its listen loop after replying.
	Exit bool
}

// Action is the outcome of matching, before anything is executed.
type Action struct {
	Category Category
	Payload  string
	Exit     bool

	handler Handler
}

type Reply struct {
	Category Category
	Text     string
	Status   Status
	Exit     bool
	Err      error
}

type Router struct {
	rules    []Rule
	fallback Handler
}

func New(rules []Rule, fallback Handler) *Router {
	return &Router{
		rules:    append([]Rule(nil), rules...),
		fallback: fallback,
	}
}

// Route picks the handler for cmd. It does no I/O.
func (r *Router) Route(cmd string) Action {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return Action{Category: CategoryNone}
	}

	for _, rule := range r.rules {
		payload, ok := rule.Match(cmd)
		if !ok {
			continue
		}
		return Action{
			Category: rule.Category,
			Payload:  payload,
			Exit:     rule.Exit,
			handler:  rule.Handler,
		}
	}

	return Action{
		Category: CategoryFallback,
		Payload:  cmd,
		handler:  r.fallback,
	}
}

// Dispatch routes cmd and runs the chosen handler. Handler errors never escape:
// they come back as a Reply with a speakable text.
func (r *Router) Dispatch(ctx context.Context, cmd string) Reply {
	act := r.Route(cmd)
	log := logging.From(ctx)
	if act.Category == CategoryNone {
		return Reply{Category: CategoryNone, Text: NotUnderstoodText, Status: StatusNotUnderstood}
	}
	if act.handler == nil {
		log.Warn("No handler bound", "category", act.Category)
		return Reply{Category: act.Category, Text: ApologyText, Status: StatusFailed, Err: errors.New("no handler")}
	}

	log.Debug("Dispatching", "category", act.Category, "payload", act.Payload)

	text, err := act.handler.Handle(ctx, Request{
		Category: act.Category,
		Command:  strings.TrimSpace(cmd),
		Payload:  act.Payload,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Info("Nothing matched", "category", act.Category, "err", err)
			return Reply{Category: act.Category, Text: notFoundText(err), Status: StatusNotFound, Err: err}
		}
		log.Error("Handler failed", "category", act.Category, "err", err)
		return Reply{Category: act.Category, Text: ApologyText, Status: StatusFailed, Err: err}
	}

	return Reply{Category: act.Category, Text: text, Status: StatusOK, Exit: act.Exit}
}

// NotFound wraps msg so that Dispatch reports it as a resolution miss.
func NotFound(msg string) error {
	return &notFoundError{msg: msg}
}

type notFoundError struct{ msg string }

func (e *notFoundError) Error() string { return e.msg }
func (e *notFoundError) Unwrap() error { return ErrNotFound }

func notFoundText(err error) string {
	var nf *notFoundError
	if errors.As(err, &nf) && nf.msg != "" {
		return nf.msg
	}
	return "Sorry, I couldn't find that."
}
