package message

import (
	"restaurant_chat/src/model"
	"strings"
	"unicode/utf8"
)

// DefaultMaxLength is the largest message body sent to the model in one piece
const DefaultMaxLength = 4000

// splitCandidates are tried in order; earlier ones give nicer seams
var splitCandidates = []string{"\n\n", "\n", ". ", "! ", "? ", ", ", " "}

// minSplitRatio keeps chunks from becoming pathologically short
const minSplitRatio = 0.7

// NeedsSegmenting reports whether msg is longer than maxLength characters
func NeedsSegmenting(msg model.Message, maxLength int) bool {
	return utf8.RuneCountInString(msg.Content) > maxLength
}

// Segment splits an oversized message into same-role chunks of at most
// maxLength characters, preferring paragraph, line, sentence and word
// boundaries over a hard cut.
func Segment(msg model.Message, maxLength int) []model.Message {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if !NeedsSegmenting(msg, maxLength) {
		return []model.Message{msg}
	}

	var parts []model.Message
	remaining := []rune(msg.Content)
	for len(remaining) > 0 {
		if len(remaining) <= maxLength {
			if chunk := strings.TrimSpace(string(remaining)); chunk != "" {
				parts = append(parts, model.Message{Role: msg.Role, Content: chunk})
			}
			break
		}

		at := splitPoint(remaining, maxLength)
		if chunk := strings.TrimSpace(string(remaining[:at])); chunk != "" {
			parts = append(parts, model.Message{Role: msg.Role, Content: chunk})
		}
		remaining = []rune(strings.TrimSpace(string(remaining[at:])))
	}
	return parts
}

// SegmentAll applies Segment to every message, keeping order
func SegmentAll(messages []model.Message, maxLength int) []model.Message {
	out := make([]model.Message, 0, len(messages))
	for _, msg := range messages {
		out = append(out, Segment(msg, maxLength)...)
	}
	return out
}

// splitPoint returns the rune offset to cut text at. The seam always
// falls inside the first maxLength runes.
func splitPoint(text []rune, maxLength int) int {
	window := string(text[:maxLength])
	threshold := int(float64(maxLength) * minSplitRatio)

	for _, candidate := range splitCandidates {
		idx := strings.LastIndex(window, candidate)
		if idx < 0 {
			continue
		}
		at := utf8.RuneCountInString(window[:idx])
		if at >= threshold {
			return at + 1
		}
	}
	return maxLength
}
