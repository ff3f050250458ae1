package skills

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zara/internal/llm"
	"zara/internal/memory"
	"zara/internal/opener/openertest"
	"zara/internal/resolver"
	"zara/internal/router"
	"zara/internal/vision"
)

type factMap map[string]string

func (f factMap) Fact(_ context.Context, key string) (string, bool, error) {
	v, ok := f[key]
	return v, ok, nil
}

func (f factMap) SetFact(_ context.Context, key, value string) error {
	f[key] = value
	return nil
}

func req(cat router.Category, cmd, payload string) router.Request {
	return router.Request{Category: cat, Command: cmd, Payload: payload}
}

func TestClock(t *testing.T) {
	now := time.Date(2026, time.October, 19, 15, 4, 0, 0, time.UTC)
	c := Clock{Now: func() time.Time { return now }}

	for cat, want := range map[router.Category]string{
		router.CategoryTime: "The current time is 03:04 PM",
		router.CategoryDate: "Today's date is 19 October, 2026",
		router.CategoryDay:  "Today is Monday",
	} {
		got, err := c.Handle(context.Background(), req(cat, "", ""))
		require.NoError(t, err)
		assert.Equal(t, want, got, cat)
	}
}

func weatherServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/current.json", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		switch r.URL.Query().Get("q") {
		case "atlantis":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":1006,"message":"No matching location found."}}`))
		default:
			w.Write([]byte(`{"location":{"name":"` + r.URL.Query().Get("q") + `"},"current":{"temp_c":12.0,"condition":{"text":"Partly cloudy"}}}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWeather(t *testing.T) {
	srv := weatherServer(t)
	w := Weather{BaseURL: srv.URL, APIKey: "k", DefaultCity: "Delhi", Facts: factMap{}}

	got, err := w.Handle(context.Background(), req(router.CategoryWeather, "whats the weather in paris", ""))
	require.NoError(t, err)
	assert.Equal(t, "The temperature in paris is 12 degrees Celsius and it is partly cloudy.", got)

	got, err = w.Handle(context.Background(), req(router.CategoryWeather, "weather", ""))
	require.NoError(t, err)
	assert.Contains(t, got, "in Delhi")

	w.Facts = factMap{"city": "Oslo"}
	got, err = w.Handle(context.Background(), req(router.CategoryWeather, "weather", ""))
	require.NoError(t, err)
	assert.Contains(t, got, "in Oslo")

	_, err = w.Handle(context.Background(), req(router.CategoryWeather, "weather in atlantis", ""))
	assert.ErrorIs(t, err, router.ErrNotFound)
}

func TestWeatherNeedsKey(t *testing.T) {
	_, err := Weather{}.Handle(context.Background(), req(router.CategoryWeather, "weather", ""))
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		w.Write([]byte(`{"status":"ok","articles":[{"title":"One."},{"title":""},{"title":"Two"},{"title":"Three"}]}`))
	}))
	defer srv.Close()

	got, err := News{BaseURL: srv.URL, APIKey: "secret", Limit: 2}.Handle(context.Background(), req(router.CategoryNews, "news", ""))
	require.NoError(t, err)
	assert.Equal(t, "Here are the top news headlines. 1. One. 2. Two.", got)
}

func TestNewsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"error","message":"bad key"}`))
	}))
	defer srv.Close()

	_, err := News{BaseURL: srv.URL, APIKey: "x"}.Handle(context.Background(), req(router.CategoryNews, "news", ""))
	require.Error(t, err)
	assert.NotErrorIs(t, err, router.ErrNotFound)
}

func TestWikipedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page/summary/alan_turing":
			w.Write([]byte(`{"type":"standard","extract":"Alan Turing was a mathematician. He founded computer science. He was born in 1912."}`))
		case "/page/summary/mercury":
			w.Write([]byte(`{"type":"disambiguation","extract":"Mercury may refer to:"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"type":"not_found"}`))
		}
	}))
	defer srv.Close()

	wiki := Wikipedia{BaseURL: srv.URL}
	ctx := context.Background()

	got, err := wiki.Handle(ctx, req(router.CategoryWikipedia, "", "alan turing"))
	require.NoError(t, err)
	assert.Equal(t, "Alan Turing was a mathematician. He founded computer science.", got)

	got, err = wiki.Handle(ctx, req(router.CategoryWikipedia, "", "mercury"))
	require.NoError(t, err)
	assert.Equal(t, "There are multiple entries for this topic. Please be more specific.", got)

	_, err = wiki.Handle(ctx, req(router.CategoryWikipedia, "", "qwertyzzz"))
	require.ErrorIs(t, err, router.ErrNotFound)
	assert.Equal(t, "Sorry, I couldn't find any information on that topic.", err.Error())
}

func TestFirstSentences(t *testing.T) {
	assert.Equal(t, "A. B!", firstSentences("A. B! C? D.", 2))
	assert.Equal(t, "Only one.", firstSentences("Only one.", 2))
}

func TestYouTube(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "lofi beats", r.URL.Query().Get("search_query"))
		w.Write([]byte(`var ytInitialData = {"videoId":"dQw4w9WgXcQ","title":"x"}`))
	}))
	defer srv.Close()

	rec := &openertest.Recorder{}
	got, err := YouTube{BaseURL: srv.URL, Opener: rec}.Handle(context.Background(), req(router.CategoryYouTube, "play lofi beats on youtube", "lofi beats on youtube"))
	require.NoError(t, err)
	assert.Equal(t, "Playing lofi beats", got)
	assert.Equal(t, []string{srv.URL + "/watch?v=dQw4w9WgXcQ"}, rec.Opened)
}

func TestYouTubeFallsBackToResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>nothing here</html>`))
	}))
	defer srv.Close()

	rec := &openertest.Recorder{}
	_, err := YouTube{BaseURL: srv.URL, Opener: rec}.Handle(context.Background(), req(router.CategoryYouTube, "", "jazz"))
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/results?search_query=jazz"}, rec.Opened)
}

func TestJoke(t *testing.T) {
	got, err := Joke{Pick: func(int) int { return 0 }}.Handle(context.Background(), router.Request{})
	require.NoError(t, err)
	assert.Equal(t, jokes[0], got)

	got, err = Joke{}.Handle(context.Background(), router.Request{})
	require.NoError(t, err)
	assert.Contains(t, jokes, got)
}

const ddgPage = `<html><body>
<div class="result"><a class="result__a" href="/1">Go Programming Language</a></div>
<div class="result"><a class="result__a" href="/2">A Tour of Go</a></div>
<div class="result"><a class="result__a" href="/3">Effective Go</a></div>
<div class="result"><a class="result__a" href="/4">Go by Example</a></div>
</body></html>`

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		w.Write([]byte(ddgPage))
	}))
	defer srv.Close()

	rec := &openertest.Recorder{}
	s := Search{ResultsURL: srv.URL, BrowseURL: "https://search.example/q", Opener: rec}

	got, err := s.Handle(context.Background(), req(router.CategorySearch, "search for golang", "for golang"))
	require.NoError(t, err)
	assert.Equal(t, "Here is what I found for golang: Go Programming Language; A Tour of Go; Effective Go.", got)
	assert.Equal(t, []string{"https://search.example/q?q=golang"}, rec.Opened)
}

func TestSearchWithoutResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	rec := &openertest.Recorder{}
	got, err := Search{ResultsURL: srv.URL, Opener: rec}.Handle(context.Background(), req(router.CategorySearch, "", "cats"))
	require.NoError(t, err)
	assert.Equal(t, "Here are the search results for cats.", got)
	assert.Len(t, rec.Opened, 1)
}

type resolveFunc func(string) (resolver.Target, error)

func (f resolveFunc) Resolve(p string) (resolver.Target, error) { return f(p) }

func TestOpen(t *testing.T) {
	ctx := context.Background()
	res := resolveFunc(func(p string) (resolver.Target, error) {
		switch p {
		case "youtube":
			return resolver.Target{Kind: resolver.KindURL, URL: "https://youtube.com"}, nil
		case "resume":
			return resolver.Target{Kind: resolver.KindFile, Path: "/home/zara/Documents/resume_2023.docx"}, nil
		default:
			return resolver.Target{}, resolver.ErrNotFound
		}
	})

	rec := &openertest.Recorder{}
	o := Open{Resolver: res, Opener: rec}

	got, err := o.Handle(ctx, req(router.CategoryOpen, "open youtube", "youtube"))
	require.NoError(t, err)
	assert.Equal(t, "Opening website https://youtube.com", got)

	got, err = o.Handle(ctx, req(router.CategoryOpen, "open resume", "resume"))
	require.NoError(t, err)
	assert.Equal(t, "Opening file resume_2023.docx", got)

	_, err = o.Handle(ctx, req(router.CategoryOpen, "open budget", "budget"))
	require.ErrorIs(t, err, router.ErrNotFound)
	assert.Equal(t, "I couldn't find a file called budget.", err.Error())

	assert.Equal(t, []string{"https://youtube.com", "/home/zara/Documents/resume_2023.docx"}, rec.Opened)
}

func TestOpenSearchOnMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ddgPage))
	}))
	defer srv.Close()

	rec := &openertest.Recorder{}
	o := Open{
		Resolver: resolveFunc(func(string) (resolver.Target, error) { return resolver.Target{}, resolver.ErrNotFound }),
		Opener:   rec,
		Search:   &Search{ResultsURL: srv.URL, BrowseURL: "https://search.example/q", Opener: rec},
	}

	got, err := o.Handle(context.Background(), req(router.CategoryOpen, "", "budget"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "Here is what I found for budget"))
	assert.Equal(t, []string{"https://search.example/q?q=budget"}, rec.Opened)
}

func TestOpenOpenerFailure(t *testing.T) {
	rec := &openertest.Recorder{Err: errors.New("no display")}
	o := Open{
		Resolver: resolveFunc(func(string) (resolver.Target, error) {
			return resolver.Target{Kind: resolver.KindURL, URL: "https://x.com"}, nil
		}),
		Opener: rec,
	}
	_, err := o.Handle(context.Background(), req(router.CategoryOpen, "", "x"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, router.ErrNotFound)
}

func TestRememberRecall(t *testing.T) {
	ctx := context.Background()
	facts := factMap{}

	got, err := Remember{Facts: facts}.Handle(ctx, req(router.CategoryRemember, "", "that my city is london"))
	require.NoError(t, err)
	assert.Equal(t, "Okay, I'll remember that your city is london.", got)
	assert.Equal(t, "london", facts["city"])

	got, err = Recall{Facts: facts}.Handle(ctx, req(router.CategoryRecall, "", "city"))
	require.NoError(t, err)
	assert.Equal(t, "Your city is london.", got)

	_, err = Recall{Facts: facts}.Handle(ctx, req(router.CategoryRecall, "", "favourite colour"))
	assert.ErrorIs(t, err, router.ErrNotFound)

	got, err = Remember{Facts: facts}.Handle(ctx, req(router.CategoryRemember, "", "this"))
	require.NoError(t, err)
	assert.Contains(t, got, "Tell me what to remember")
}

type sentMail struct{ to, subject, body string }

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

func TestParseDraft(t *testing.T) {
	tests := []struct {
		in   string
		want draft
		err  bool
	}{
		{in: "to john saying see you at noon", want: draft{"john", DefaultSubject, "see you at noon"}},
		{in: "to john subject lunch saying see you", want: draft{"john", "lunch", "see you"}},
		{in: "john that says hi", want: draft{"john", DefaultSubject, "hi"}},
		{in: "to john", err: true},
	}
	for _, tt := range tests {
		got, err := parseDraft(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSpokenAddress(t *testing.T) {
	addr, ok := spokenAddress("john dot doe at example dot com")
	require.True(t, ok)
	assert.Equal(t, "john.doe@example.com", addr)

	_, ok = spokenAddress("john")
	assert.False(t, ok)
}

func TestEmail(t *testing.T) {
	ctx := context.Background()
	m := &fakeMailer{}
	e := Email{Mailer: m, Facts: factMap{"email john": "john@example.com"}}

	got, err := e.Handle(ctx, req(router.CategoryEmail, "", "to john subject lunch saying see you at noon"))
	require.NoError(t, err)
	assert.Equal(t, "Email has been sent to john.", got)
	assert.Equal(t, []sentMail{{"john@example.com", "lunch", "see you at noon"}}, m.sent)

	_, err = e.Handle(ctx, req(router.CategoryEmail, "", "to bob saying hi"))
	assert.ErrorIs(t, err, router.ErrNotFound)

	m.err = errors.New("relay down")
	_, err = e.Handle(ctx, req(router.CategoryEmail, "", "to john saying hi"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, router.ErrNotFound)
}

func TestSMTPNeedsHost(t *testing.T) {
	err := NewSMTP(SMTPConfig{}).Send(context.Background(), "a@b.c", "s", "b")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

type fakeAsker struct {
	history []llm.Message
	prompt  string
	answer  string
}

func (f *fakeAsker) Ask(_ context.Context, history []llm.Message, prompt string) (string, error) {
	f.history, f.prompt = history, prompt
	return f.answer, nil
}

type fakeHistory []memory.Turn

func (h fakeHistory) Recent(_ context.Context, limit int) ([]memory.Turn, error) {
	if len(h) > limit {
		return h[len(h)-limit:], nil
	}
	return h, nil
}

func TestChat(t *testing.T) {
	asker := &fakeAsker{answer: "Paris."}
	hist := fakeHistory{
		{Role: memory.RoleUser, Content: "hello"},
		{Role: memory.RoleAssistant, Content: "hi there"},
		{Role: memory.RoleUser, Content: "how are you"},
	}
	c := Chat{LLM: asker, History: hist, Turns: 2}

	got, err := c.Handle(context.Background(), req(router.CategoryFallback, "what is the capital of france", "what is the capital of france"))
	require.NoError(t, err)
	assert.Equal(t, "Paris.", got)
	assert.Equal(t, "what is the capital of france", asker.prompt)
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleAssistant, Content: "hi there"},
		{Role: llm.RoleUser, Content: "how are you"},
	}, asker.history)
}

func TestChatWit(t *testing.T) {
	c := Chat{LLM: &fakeAsker{answer: "Paris."}, Roll: func() float64 { return 0.01 }, WitRate: 0.1}
	got, err := c.Handle(context.Background(), req(router.CategoryAI, "ask ai capital of france", "capital of france"))
	require.NoError(t, err)
	assert.NotEqual(t, "Paris.", got)
	assert.Contains(t, got, "Paris.")
}

func TestChatNotConfigured(t *testing.T) {
	_, err := Chat{}.Handle(context.Background(), req(router.CategoryAI, "ai hi", "hi"))
	assert.ErrorIs(t, err, ErrNotConfigured)
}

type stillCamera struct {
	img []byte
	err error
}

func (c stillCamera) Capture(context.Context) ([]byte, error) { return c.img, c.err }

type detectFunc func(ctx context.Context, image []byte) ([]vision.Detection, error)

func (f detectFunc) Detect(ctx context.Context, image []byte) ([]vision.Detection, error) {
	return f(ctx, image)
}

func TestVision(t *testing.T) {
	ctx := context.Background()
	cam := stillCamera{img: []byte("frame")}
	detector := detectFunc(func(_ context.Context, image []byte) ([]vision.Detection, error) {
		assert.Equal(t, "frame", string(image))
		return []vision.Detection{{Label: "person", Confidence: 0.9}, {Label: "cup", Confidence: 0.5}}, nil
	})

	got, err := Vision{Camera: cam, Detector: detector}.Handle(ctx, req(router.CategoryVision, "what do you see", ""))
	require.NoError(t, err)
	assert.Equal(t, "I can see a person and a cup.", got)

	none := detectFunc(func(context.Context, []byte) ([]vision.Detection, error) { return nil, nil })
	got, err = Vision{Camera: cam, Detector: none}.Handle(ctx, req(router.CategoryVision, "look around", ""))
	require.NoError(t, err)
	assert.Equal(t, "I don't see anything I recognise.", got)

	_, err = Vision{Camera: stillCamera{err: errors.New("no device")}, Detector: detector}.Handle(ctx, req(router.CategoryVision, "look around", ""))
	assert.ErrorContains(t, err, "no device")

	_, err = Vision{Camera: cam}.Handle(ctx, req(router.CategoryVision, "look around", ""))
	assert.ErrorIs(t, err, ErrNotConfigured)
}
