package router

import "strings"

// Matcher reports whether cmd belongs to a rule and returns the payload with
// the trigger removed.
type Matcher func(cmd string) (string, bool)

// Prefix matches when cmd starts with one of the phrases at a word boundary.
// Longer phrases should come first.
func Prefix(phrases ...string) Matcher {
	return func(cmd string) (string, bool) {
		for _, p := range phrases {
			if cmd == p {
				return "", true
			}
			if strings.HasPrefix(cmd, p+" ") {
				return strings.TrimSpace(cmd[len(p):]), true
			}
		}
		return "", false
	}
}

// Words matches when one of the words appears as a whole word. The payload is
// the whole command.
func Words(words ...string) Matcher {
	return func(cmd string) (string, bool) {
		fields := strings.Fields(cmd)
		for _, w := range words {
			for _, f := range fields {
				if f == w {
					return cmd, true
				}
			}
		}
		return "", false
	}
}

// Phrases matches a multi-word phrase anywhere on word boundaries and strips
// it, together with anything before it, from the payload.
func Phrases(phrases ...string) Matcher {
	return func(cmd string) (string, bool) {
		padded := " " + cmd + " "
		for _, p := range phrases {
			idx := strings.Index(padded, " "+p+" ")
			if idx < 0 {
				continue
			}
			rest := padded[idx+len(p)+1:]
			return strings.TrimSpace(rest), true
		}
		return "", false
	}
}

// Any tries each matcher in order.
func Any(ms ...Matcher) Matcher {
	return func(cmd string) (string, bool) {
		for _, m := range ms {
			if payload, ok := m(cmd); ok {
				return payload, true
			}
		}
		return "", false
	}
}
