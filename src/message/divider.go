package message

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Separator marks the boundary between reply bubbles in a streamed answer
const Separator = "\n\n---MESSAGE_SEPARATOR---\n\n"

// separatorToken also matches a separator whose padding was trimmed away
var separatorToken = strings.TrimSpace(Separator)

// matcher returns the bubbles for text, or nil when its shape does not apply
type matcher func(text string) []string

var (
	blankLine = regexp.MustCompile(`\n\s*\n`)

	statementThenQuestion = regexp.MustCompile(`([^?]+\.[^?]*)\s*\n\s*([^?]+\?[^?]*)`)
	questionThenRemark    = regexp.MustCompile(`([^?]+\?)\s*\n\s*([^\n]+)`)
	questionThenSentence  = regexp.MustCompile(`([^?]+\?)\s*\n\s*([A-Z][^?]+)`)
	statementThenOffer    = regexp.MustCompile(`([^?]+\.[^?]*)\s*\n\s*(Se desejar|Quer que|Posso|Posso também|Deseja|Gostaria|Would you like|Shall I|Do you want|If you'd like|I can also)`)
)

// matchers run in priority order; the first non-nil result wins
var matchers = []matcher{
	splitOnSeparator,
	splitOnBlankLines,
	splitAtFirstGroup(statementThenQuestion, 20, 10),
	splitAtFirstGroup(questionThenRemark, 0, 0),
	splitAtFirstGroup(questionThenSentence, 0, 10),
	splitAtFirstGroup(statementThenOffer, 20, 10),
}

// Divide splits a finished assistant reply into display bubbles. Blank
// input yields no bubbles; otherwise the bubbles hold every non-whitespace
// character of text apart from separator markers.
func Divide(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []string{}
	}

	for _, match := range matchers {
		if parts := match(trimmed); parts != nil {
			return parts
		}
	}
	return []string{trimmed}
}

// Join is the inverse of the separator rule
func Join(parts []string) string {
	return strings.Join(parts, Separator)
}

func splitOnSeparator(text string) []string {
	if !strings.Contains(text, separatorToken) {
		return nil
	}
	parts := nonEmpty(strings.Split(text, separatorToken))
	if len(parts) == 0 {
		return nil
	}
	return parts
}

func splitOnBlankLines(text string) []string {
	parts := nonEmpty(blankLine.Split(text, -1))
	if len(parts) < 2 {
		return nil
	}
	return parts
}

// splitAtFirstGroup cuts text where the pattern's first group ends, so no
// character is dropped. Both halves must be longer than the given minimums.
func splitAtFirstGroup(pattern *regexp.Regexp, minBefore, minAfter int) matcher {
	return func(text string) []string {
		loc := pattern.FindStringSubmatchIndex(text)
		if loc == nil || loc[3] <= 0 {
			return nil
		}

		before := strings.TrimSpace(text[:loc[3]])
		after := strings.TrimSpace(text[loc[3]:])
		if before == "" || after == "" {
			return nil
		}
		if utf8.RuneCountInString(before) <= minBefore || utf8.RuneCountInString(after) <= minAfter {
			return nil
		}
		return []string{before, after}
	}
}

func nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
