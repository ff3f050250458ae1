package router_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zara/internal/router"
)

type recorder struct {
	calls []router.Request
	text  string
	err   error
}

func (r *recorder) Handle(_ context.Context, req router.Request) (string, error) {
	r.calls = append(r.calls, req)
	return r.text, r.err
}

func newRouter(weather, open, fallback *recorder) *router.Router {
	return router.New([]router.Rule{
		{Category: router.CategoryWeather, Match: router.Phrases("weather in", "weather"), Handler: weather},
		{Category: router.CategoryOpen, Match: router.Prefix("open", "launch"), Handler: open},
		{Category: router.CategoryExit, Match: router.Words("bye"), Handler: router.HandlerFunc(func(context.Context, router.Request) (string, error) {
			return "Goodbye!", nil
		}), Exit: true},
	}, fallback)
}

func TestRouteFirstMatchWins(t *testing.T) {
	weather, open, fallback := &recorder{}, &recorder{}, &recorder{}
	r := newRouter(weather, open, fallback)

	act := r.Route("open weather in london")
	assert.Equal(t, router.CategoryWeather, act.Category)
	assert.Equal(t, "london", act.Payload)

	act = r.Route("open youtube")
	assert.Equal(t, router.CategoryOpen, act.Category)
	assert.Equal(t, "youtube", act.Payload)
}

func TestRouteDoesNotCallHandlers(t *testing.T) {
	weather, open, fallback := &recorder{}, &recorder{}, &recorder{}
	r := newRouter(weather, open, fallback)

	r.Route("weather in paris")
	r.Route("tell me something")

	assert.Empty(t, weather.calls)
	assert.Empty(t, fallback.calls)
}

func TestDispatchExactlyOneHandler(t *testing.T) {
	weather := &recorder{text: "sunny"}
	open := &recorder{text: "opened"}
	fallback := &recorder{text: "llm"}
	r := newRouter(weather, open, fallback)

	reply := r.Dispatch(context.Background(), "weather in paris")
	require.Equal(t, router.StatusOK, reply.Status)
	assert.Equal(t, "sunny", reply.Text)
	assert.Len(t, weather.calls, 1)
	assert.Empty(t, open.calls)
	assert.Empty(t, fallback.calls)
	assert.Equal(t, "paris", weather.calls[0].Payload)
	assert.Equal(t, "weather in paris", weather.calls[0].Command)
}

func TestDispatchFallbackVerbatim(t *testing.T) {
	weather, open := &recorder{}, &recorder{}
	fallback := &recorder{text: "forty two"}
	r := newRouter(weather, open, fallback)

	for _, cmd := range []string{"what is the meaning of life", "opening hours of the bakery", "weathered wood"} {
		fallback.calls = nil
		reply := r.Dispatch(context.Background(), cmd)
		assert.Equal(t, router.CategoryFallback, reply.Category, cmd)
		require.Len(t, fallback.calls, 1, cmd)
		assert.Equal(t, cmd, fallback.calls[0].Payload)
	}
	assert.Empty(t, weather.calls)
	assert.Empty(t, open.calls)
}

func TestDispatchHandlerFailureBecomesApology(t *testing.T) {
	weather := &recorder{err: fmt.Errorf("weather api: %w", errors.New("timeout"))}
	r := newRouter(weather, &recorder{}, &recorder{})

	reply := r.Dispatch(context.Background(), "weather")
	assert.Equal(t, router.StatusFailed, reply.Status)
	assert.Equal(t, router.ApologyText, reply.Text)
	assert.Error(t, reply.Err)
	assert.False(t, reply.Exit)
}

func TestDispatchNotFoundIsDistinct(t *testing.T) {
	open := &recorder{err: router.NotFound("I couldn't find a file called resume.")}
	r := newRouter(&recorder{}, open, &recorder{})

	reply := r.Dispatch(context.Background(), "open file resume")
	assert.Equal(t, router.StatusNotFound, reply.Status)
	assert.Equal(t, "I couldn't find a file called resume.", reply.Text)
	assert.ErrorIs(t, reply.Err, router.ErrNotFound)
}

func TestDispatchEmpty(t *testing.T) {
	fallback := &recorder{}
	r := newRouter(&recorder{}, &recorder{}, fallback)

	reply := r.Dispatch(context.Background(), "   ")
	assert.Equal(t, router.StatusNotUnderstood, reply.Status)
	assert.Equal(t, router.NotUnderstoodText, reply.Text)
	assert.Empty(t, fallback.calls)
}

func TestDispatchExit(t *testing.T) {
	r := newRouter(&recorder{}, &recorder{}, &recorder{})

	reply := r.Dispatch(context.Background(), "ok bye")
	assert.True(t, reply.Exit)
	assert.Equal(t, "Goodbye!", reply.Text)
}

func TestMatchers(t *testing.T) {
	tests := []struct {
		name    string
		m       router.Matcher
		cmd     string
		payload string
		ok      bool
	}{
		{"prefix", router.Prefix("search for", "search"), "search for go generics", "go generics", true},
		{"prefix shorter", router.Prefix("search for", "search"), "search cats", "cats", true},
		{"prefix alone", router.Prefix("open"), "open", "", true},
		{"prefix needs boundary", router.Prefix("open"), "opened the door", "", false},
		{"prefix not at start", router.Prefix("open"), "please open it", "", false},
		{"words", router.Words("joke"), "tell me a joke", "tell me a joke", true},
		{"words whole only", router.Words("day"), "what is today", "", false},
		{"phrases", router.Phrases("tell me about"), "please tell me about alan turing", "alan turing", true},
		{"phrases boundary", router.Phrases("who is"), "whois lookup", "", false},
		{"any", router.Any(router.Words("news"), router.Words("headlines")), "read the headlines", "read the headlines", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			payload, ok := tc.m(tc.cmd)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.payload, payload)
		})
	}
}
