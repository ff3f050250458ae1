package skills

import (
	"context"
	"math/rand/v2"

	"zara/internal/router"
)

var jokes = []string{
	"Why do programmers prefer dark mode? Because light attracts bugs.",
	"There are only 10 kinds of people in this world: those who know binary and those who don't.",
	"A SQL query walks into a bar, walks up to two tables and asks, can I join you?",
	"Why did the developer go broke? Because he used up all his cache.",
	"How many programmers does it take to change a light bulb? None, that's a hardware problem.",
	"I would tell you a UDP joke, but you might not get it.",
	"Why do Java developers wear glasses? Because they don't see sharp.",
	"Debugging is like being the detective in a crime movie where you are also the murderer.",
	"To understand recursion, you must first understand recursion.",
	"The best thing about a boolean is that even if you are wrong, you are only off by a bit.",
}

type Joke struct {
	// Pick returns an index in [0, n). Defaults to math/rand.
	Pick func(n int) int
}

func (j Joke) Handle(context.Context, router.Request) (string, error) {
	pick := j.Pick
	if pick == nil {
		pick = rand.IntN
	}
	return jokes[pick(len(jokes))], nil
}
