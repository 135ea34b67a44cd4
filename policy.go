package main

import (
	"regexp"
	"strings"
)

// Salience heuristics: questions, help-seeking or affective language, and
// lexically rich statements all raise the odds of an ambient reply.
var (
	inquisitiveRe = regexp.MustCompile(`\b(why|how|what|should|could|help|idea|stuck|fix|error|opinion)\b`)
	affectiveRe   = regexp.MustCompile(`\b(lonely|bored|omg|wow|hmm|thought)\b`)
	tokenRe       = regexp.MustCompile(`[a-z']+`)
)

// ReplyWorthy reports whether a message looks like it deserves a reply.
// Pure function of the trimmed, lower-cased text; empty input is never
// reply-worthy.
func ReplyWorthy(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return false
	}

	if strings.HasSuffix(t, "?") {
		return true
	}
	if inquisitiveRe.MatchString(t) || affectiveRe.MatchString(t) {
		return true
	}

	// Long-ish messages with high lexical diversity tend to be substantive.
	tokens := tokenRe.FindAllString(t, -1)
	if len(tokens) < 6 {
		return false
	}
	uniq := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		uniq[tok] = struct{}{}
	}
	diversity := float64(len(uniq)) / float64(len(tokens))
	return diversity > 0.75
}
