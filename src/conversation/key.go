package conversation

import (
	"regexp"
	"restaurant_chat/src/model"
	"strings"
)

const (
	// DefaultKey is shared by every message list without a user turn
	DefaultKey = "default"

	keyPrefix       = "conv_"
	keyPrefixLength = 30
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonKeyChars   = regexp.MustCompile(`[^a-zA-Z0-9_]`)
)

// Key derives the conversation key from the first user message. Lists that
// open with the same text collide on purpose.
func Key(messages []model.Message) string {
	for _, m := range messages {
		if m.Role != model.RoleUser {
			continue
		}

		head := []rune(m.Content)
		if len(head) > keyPrefixLength {
			head = head[:keyPrefixLength]
		}

		slug := whitespaceRun.ReplaceAllString(string(head), "_")
		slug = nonKeyChars.ReplaceAllString(slug, "")
		return keyPrefix + strings.ToLower(slug)
	}
	return DefaultKey
}
