package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadExchanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voicechat.db")
	s, err := Open(path, slog.Default())
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.SaveExchange(ctx, "what time is it", "it is noon"))
	require.NoError(t, s.SaveExchange(ctx, "thanks", "you're welcome"))

	exchanges, err := s.LoadConversation(ctx, s.ConversationID())
	require.NoError(t, err)
	require.Len(t, exchanges, 2)
	assert.Equal(t, "what time is it", exchanges[0].Question)
	assert.Equal(t, "it is noon", exchanges[0].Answer)
	assert.Equal(t, "you're welcome", exchanges[1].Answer)
	assert.False(t, exchanges[0].Timestamp.IsZero())
}

func TestLoadUnknownConversation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voicechat.db")
	s, err := Open(path, slog.Default())
	require.NoError(t, err)
	defer s.Close()

	exchanges, err := s.LoadConversation(context.Background(), "conversation_0")
	require.NoError(t, err)
	assert.Empty(t, exchanges)
}

func TestReopenStartsNewConversation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voicechat.db")

	first, err := Open(path, slog.Default())
	require.NoError(t, err)
	firstID := first.ConversationID()
	require.NoError(t, first.SaveExchange(context.Background(), "hello", "hi"))
	require.NoError(t, first.Close())

	second, err := Open(path, slog.Default())
	require.NoError(t, err)
	defer second.Close()

	// earlier transcripts survive a restart
	exchanges, err := second.LoadConversation(context.Background(), firstID)
	require.NoError(t, err)
	assert.Len(t, exchanges, 1)
}
