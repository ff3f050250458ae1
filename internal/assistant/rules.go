package assistant

import (
	"zara/internal/router"
)

// Handlers binds each capability to its implementation. A nil handler is
// still routed; the router answers it with an apology.
type Handlers struct {
	AI        router.Handler
	Exit      router.Handler
	Remember  router.Handler
	Recall    router.Handler
	Clock     router.Handler
	Weather   router.Handler
	News      router.Handler
	Wikipedia router.Handler
	YouTube   router.Handler
	Joke      router.Handler
	Search    router.Handler
	Open      router.Handler
	Email     router.Handler
	Vision    router.Handler
}

// DefaultRules is the assistant's routing table. Commands that start with a
// verb come before keyword categories, so "open the weather report" opens a
// file and "play time after time" plays a song.
func DefaultRules(h Handlers) []router.Rule {
	return []router.Rule{
		{Category: router.CategoryAI, Match: router.Prefix("ask ai", "hey ai", "ai"), Handler: h.AI},
		{
			Category: router.CategoryExit,
			Match:    router.Any(router.Prefix("stop listening", "exit", "quit", "bye"), router.Words("goodbye")),
			Handler:  h.Exit,
			Exit:     true,
		},
		{Category: router.CategoryRemember, Match: router.Prefix("remember that", "remember"), Handler: h.Remember},
		{
			Category: router.CategoryRecall,
			Match:    router.Prefix("what is my", "what's my", "whats my", "do you remember"),
			Handler:  h.Recall,
		},
		{Category: router.CategoryYouTube, Match: router.Prefix("play"), Handler: h.YouTube},
		{Category: router.CategorySearch, Match: router.Prefix("search for", "search", "google"), Handler: h.Search},
		{Category: router.CategoryOpen, Match: router.Prefix("open", "launch"), Handler: h.Open},
		{
			Category: router.CategoryEmail,
			Match:    router.Prefix("send an email", "send email", "send mail", "email"),
			Handler:  h.Email,
		},
		{
			Category: router.CategoryVision,
			Match:    router.Phrases("what do you see", "what can you see", "look around", "what is in front of you", "what's in front of you"),
			Handler:  h.Vision,
		},
		{Category: router.CategoryTime, Match: router.Words("time"), Handler: h.Clock},
		{Category: router.CategoryDate, Match: router.Words("date"), Handler: h.Clock},
		{Category: router.CategoryDay, Match: router.Words("day"), Handler: h.Clock},
		{Category: router.CategoryWeather, Match: router.Words("weather", "temperature", "forecast"), Handler: h.Weather},
		{Category: router.CategoryNews, Match: router.Words("news", "headlines"), Handler: h.News},
		{
			Category: router.CategoryWikipedia,
			Match:    router.Any(router.Prefix("who is", "who was", "wikipedia"), router.Phrases("tell me about")),
			Handler:  h.Wikipedia,
		},
		{Category: router.CategoryJoke, Match: router.Words("joke", "jokes"), Handler: h.Joke},
	}
}
