package content

import (
	"regexp"
	"strings"
)

// Local block-list applied before the AI moderation gate. This is the
// cheap first pass; the gate handles everything contextual.
var blockedWords = map[string]bool{
	"fuck":    true,
	"shit":    true,
	"bitch":   true,
	"asshole": true,
	"cunt":    true,
}

var wordRe = regexp.MustCompile(`\b\w+\b`)

// Redact replaces blocked words with block characters of equal length,
// leaving the rest of the text untouched.
func Redact(input string) string {
	return wordRe.ReplaceAllStringFunc(input, func(match string) string {
		if blockedWords[strings.ToLower(match)] {
			return strings.Repeat("█", len([]rune(match)))
		}
		return match
	})
}
