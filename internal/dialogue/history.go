package dialogue

import (
	"sync"

	"VoiceChat/internal/backend"
)

// History is a bounded record of past (question, answer) exchanges.
// Entries are always appended and evicted in pairs so the history
// never ends mid-exchange.
type History struct {
	mu       sync.Mutex
	messages []backend.ChatMessage
	maxPairs int
}

// NewHistory creates a history retaining at most maxPairs exchanges.
func NewHistory(maxPairs int) *History {
	return &History{maxPairs: maxPairs}
}

// Messages returns a copy of the retained messages in order.
func (h *History) Messages() []backend.ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]backend.ChatMessage, len(h.messages))
	copy(out, h.messages)
	return out
}

// Add appends a completed exchange, evicting the oldest pair when the
// retained limit is exceeded.
func (h *History) Add(question, answer string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages,
		backend.ChatMessage{Role: backend.RoleUser, Content: question},
		backend.ChatMessage{Role: backend.RoleAssistant, Content: answer},
	)

	if len(h.messages) > h.maxPairs*2 {
		h.messages = h.messages[2:]
	}
}

// Len returns the number of retained messages.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}
