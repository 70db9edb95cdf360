package conversation

import (
	"restaurant_chat/src/model"
	"sync"
	"time"
)

// DefaultMaxPerRole bounds user and assistant turns kept per conversation
const DefaultMaxPerRole = 5

type history struct {
	messages   []model.Message
	lastUpdate time.Time
}

// Memory keeps the recent turns of every conversation in process memory.
// Nothing is persisted; a restart starts every conversation fresh.
type Memory struct {
	mu         sync.Mutex
	histories  map[string]*history
	maxPerRole int
	now        func() time.Time
}

func NewMemory(maxPerRole int) *Memory {
	if maxPerRole <= 0 {
		maxPerRole = DefaultMaxPerRole
	}
	return &Memory{
		histories:  make(map[string]*history),
		maxPerRole: maxPerRole,
		now:        time.Now,
	}
}

// Read returns a copy of the stored turns, empty for unknown keys
func (m *Memory) Read(key string) []model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.histories[key]
	if !ok {
		return []model.Message{}
	}
	return append([]model.Message(nil), h.messages...)
}

// Append adds msg at the end of the conversation and evicts the oldest
// turns of any role that went over the bound.
func (m *Memory) Append(key string, msg model.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.histories[key]
	if !ok {
		h = &history{}
		m.histories[key] = h
	}

	h.messages = append(h.messages, msg)
	h.lastUpdate = m.now()
	h.messages = trimRole(h.messages, model.RoleUser, m.maxPerRole)
	h.messages = trimRole(h.messages, model.RoleAssistant, m.maxPerRole)
}

// Clear drops the conversation entirely
func (m *Memory) Clear(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.histories, key)
}

// Tail returns the last n stored turns
func (m *Memory) Tail(key string, n int) []model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.histories[key]
	if !ok || n <= 0 {
		return []model.Message{}
	}
	return append([]model.Message(nil), trimTail(h.messages, n)...)
}

// LastUpdate reports when key was last appended to
func (m *Memory) LastUpdate(key string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.histories[key]
	if !ok {
		return time.Time{}, false
	}
	return h.lastUpdate, true
}

func trimTail(messages []model.Message, maxTurns int) []model.Message {
	if len(messages) <= maxTurns {
		return messages
	}
	return messages[len(messages)-maxTurns:]
}

// trimRole drops the oldest messages of role until at most max remain
func trimRole(messages []model.Message, role model.Role, max int) []model.Message {
	count := 0
	for _, msg := range messages {
		if msg.Role == role {
			count++
		}
	}

	excess := count - max
	if excess <= 0 {
		return messages
	}

	kept := messages[:0]
	for _, msg := range messages {
		if msg.Role == role && excess > 0 {
			excess--
			continue
		}
		kept = append(kept, msg)
	}
	return kept
}
