package dialogue

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VoiceChat/internal/backend"
)

func TestHistoryAppendsPairs(t *testing.T) {
	h := NewHistory(5)
	h.Add("what time is it", "it is noon")

	msgs := h.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, backend.RoleUser, msgs[0].Role)
	assert.Equal(t, "what time is it", msgs[0].Content)
	assert.Equal(t, backend.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "it is noon", msgs[1].Content)
}

func TestHistoryEvictsOldestPair(t *testing.T) {
	h := NewHistory(2)
	h.Add("q1", "a1")
	h.Add("q2", "a2")
	h.Add("q3", "a3")

	msgs := h.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "q2", msgs[0].Content)
	assert.Equal(t, "a3", msgs[3].Content)
}

func TestHistoryNeverOddLength(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 20; i++ {
		h.Add(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
		assert.Zero(t, h.Len()%2)
		assert.LessOrEqual(t, h.Len(), 6)
	}
}

func TestHistoryMessagesReturnsCopy(t *testing.T) {
	h := NewHistory(5)
	h.Add("q", "a")

	msgs := h.Messages()
	msgs[0].Content = "mutated"

	assert.Equal(t, "q", h.Messages()[0].Content)
}
