package api

import (
	"restaurant_chat/src/model"

	"github.com/bytedance/sonic"
)

// Validation messages returned with 400 responses
const (
	errBodyRequired     = "Request body is required"
	errMessagesRequired = "Messages array is required"
	errMessagesArray    = "Messages must be an array"
	errMessagesEmpty    = "Messages array cannot be empty"
	errInvalidRole      = "Each message must have a valid role (user, assistant, or system)"
	errInvalidContent   = "Each message must have a valid content string"
)

// parseChatRequest checks the raw body shape before anything is decoded
// into typed messages, so each failure maps to a single message.
func parseChatRequest(body []byte) ([]model.Message, string) {
	if len(body) == 0 {
		return nil, errBodyRequired
	}

	var raw any
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return nil, errBodyRequired
	}

	request, ok := raw.(map[string]any)
	if !ok {
		return nil, errBodyRequired
	}

	value, ok := request["messages"]
	if !ok || isFalsy(value) {
		return nil, errMessagesRequired
	}

	items, ok := value.([]any)
	if !ok {
		return nil, errMessagesArray
	}
	if len(items) == 0 {
		return nil, errMessagesEmpty
	}

	messages := make([]model.Message, 0, len(items))
	for _, item := range items {
		fields, _ := item.(map[string]any)

		role, _ := fields["role"].(string)
		if !model.Role(role).Valid() {
			return nil, errInvalidRole
		}

		content, ok := fields["content"].(string)
		if !ok || content == "" {
			return nil, errInvalidContent
		}

		messages = append(messages, model.Message{Role: model.Role(role), Content: content})
	}

	return messages, ""
}

func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case float64:
		return t == 0
	}
	return false
}
