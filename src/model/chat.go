package model

import "github.com/cloudwego/eino/schema"

// Role is the author of a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the accepted chat roles
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is a single chat turn as exchanged with clients
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a user-role message
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role message
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToSchema converts the message into the eino representation
func (m Message) ToSchema() *schema.Message {
	switch m.Role {
	case RoleAssistant:
		return schema.AssistantMessage(m.Content, nil)
	case RoleSystem:
		return schema.SystemMessage(m.Content)
	default:
		return schema.UserMessage(m.Content)
	}
}

// ToSchemaMessages converts a message list for the model call
func ToSchemaMessages(messages []Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, m.ToSchema())
	}
	return out
}

// ----------------------------------------------------
// ================ Request / Response ================

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Messages []Message `json:"messages"`
}

// ErrorResponse is the structured failure body
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// DataResponse wraps a successful JSON payload
type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// CompletionResult is returned by the non-streaming chat endpoint
type CompletionResult struct {
	ConversationID string   `json:"conversationId"`
	Response       string   `json:"response"`
	Parts          []string `json:"parts"`
}
