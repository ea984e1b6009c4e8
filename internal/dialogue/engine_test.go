package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VoiceChat/internal/abort"
	"VoiceChat/internal/backend"
)

// fakeCompleter returns scripted responses in order.
type fakeCompleter struct {
	responses []*backend.ChatResponse
	requests  [][]backend.ChatMessage
	err       error
}

func (f *fakeCompleter) Complete(_ context.Context, messages []backend.ChatMessage, _ []backend.ToolDef) (*backend.ChatResponse, error) {
	f.requests = append(f.requests, messages)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return nil, fmt.Errorf("no scripted response")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

type toolInvocation struct {
	name string
	args string
}

// fakeTools records invocations and returns a fixed result.
type fakeTools struct {
	invocations []toolInvocation
	result      string
	err         error
}

func (f *fakeTools) Definitions() []backend.ToolDef {
	return []backend.ToolDef{{Type: "function", Function: backend.FunctionDef{Name: "clock", Parameters: json.RawMessage(`{}`)}}}
}

func (f *fakeTools) Run(_ context.Context, name, rawArgs string) (string, error) {
	f.invocations = append(f.invocations, toolInvocation{name: name, args: rawArgs})
	return f.result, f.err
}

func response(finishReason, content string, toolCalls ...backend.ToolCall) *backend.ChatResponse {
	resp := &backend.ChatResponse{}
	resp.Choices = append(resp.Choices, struct {
		Index        int                 `json:"index"`
		Message      backend.ChatMessage `json:"message"`
		FinishReason string              `json:"finish_reason"`
	}{
		Message:      backend.ChatMessage{Role: backend.RoleAssistant, Content: content, ToolCalls: toolCalls},
		FinishReason: finishReason,
	})
	return resp
}

func newTestEngine(completer Completer, tools ToolRunner) (*Engine, *History) {
	history := NewHistory(5)
	return NewEngine(completer, tools, history, nil, "jarvis", slog.Default()), history
}

func TestAskNaturalStop(t *testing.T) {
	completer := &fakeCompleter{responses: []*backend.ChatResponse{
		response(backend.FinishStop, "it is sunny today"),
	}}
	engine, history := newTestEngine(completer, &fakeTools{})

	reply, err := engine.Ask(context.Background(), "what's the weather")

	require.NoError(t, err)
	assert.Equal(t, "it is sunny today", reply)
	assert.Equal(t, 2, history.Len())

	// request carries system prompt followed by the user question
	require.Len(t, completer.requests, 1)
	first := completer.requests[0]
	assert.Equal(t, backend.RoleSystem, first[0].Role)
	assert.Equal(t, "what's the weather", first[len(first)-1].Content)
}

func TestAskToolCallRound(t *testing.T) {
	call := backend.ToolCall{ID: "call_1", Type: "function", Function: backend.FunctionCall{Name: "clock", Arguments: `{}`}}
	completer := &fakeCompleter{responses: []*backend.ChatResponse{
		response(backend.FinishToolCalls, "", call),
		response(backend.FinishStop, "it is noon"),
	}}
	tools := &fakeTools{result: "2024-06-01 12:00:00 +00:00"}
	engine, history := newTestEngine(completer, tools)

	reply, err := engine.Ask(context.Background(), "what time is it")

	require.NoError(t, err)
	assert.Equal(t, "it is noon", reply)
	require.Len(t, completer.requests, 2)
	require.Len(t, tools.invocations, 1)
	assert.Equal(t, "clock", tools.invocations[0].name)

	// second request includes the assistant tool-call message and the
	// tool result correlated by id
	second := completer.requests[1]
	toolMsg := second[len(second)-1]
	assert.Equal(t, backend.RoleTool, toolMsg.Role)
	assert.Equal(t, "call_1", toolMsg.ToolCallID)
	assert.Equal(t, tools.result, toolMsg.Content)

	assistantMsg := second[len(second)-2]
	require.Len(t, assistantMsg.ToolCalls, 1)

	// tool run context is not persisted, only the final exchange
	assert.Equal(t, 2, history.Len())
}

func TestAskExecutesOnlyFirstToolCall(t *testing.T) {
	calls := []backend.ToolCall{
		{ID: "call_1", Type: "function", Function: backend.FunctionCall{Name: "clock", Arguments: `{}`}},
		{ID: "call_2", Type: "function", Function: backend.FunctionCall{Name: "weather", Arguments: `{}`}},
	}
	completer := &fakeCompleter{responses: []*backend.ChatResponse{
		response(backend.FinishToolCalls, "", calls...),
		response(backend.FinishStop, "done"),
	}}
	tools := &fakeTools{result: "ok"}
	engine, _ := newTestEngine(completer, tools)

	_, err := engine.Ask(context.Background(), "q")

	require.NoError(t, err)
	// multiple simultaneous tool calls are not fanned out
	require.Len(t, tools.invocations, 1)
	assert.Equal(t, "clock", tools.invocations[0].name)
}

func TestAskLengthExceeded(t *testing.T) {
	completer := &fakeCompleter{responses: []*backend.ChatResponse{
		response(backend.FinishLength, "truncated"),
	}}
	engine, history := newTestEngine(completer, &fakeTools{})

	reply, err := engine.Ask(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, GenericErrorReply, reply)
	assert.Zero(t, history.Len())
}

func TestAskContentFiltered(t *testing.T) {
	completer := &fakeCompleter{responses: []*backend.ChatResponse{
		response(backend.FinishContentFilter, ""),
	}}
	engine, _ := newTestEngine(completer, &fakeTools{})

	reply, err := engine.Ask(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, FilteredReply, reply)
}

func TestAskRefusal(t *testing.T) {
	resp := response("", "")
	resp.Choices[0].Message.Refusal = "no"
	completer := &fakeCompleter{responses: []*backend.ChatResponse{resp}}
	engine, _ := newTestEngine(completer, &fakeTools{})

	reply, err := engine.Ask(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, GenericErrorReply, reply)
}

func TestAskNoToolCallUsesContent(t *testing.T) {
	// unusual finish reason but content present and no tool calls
	completer := &fakeCompleter{responses: []*backend.ChatResponse{
		response("unknown_reason", "some reply"),
	}}
	engine, _ := newTestEngine(completer, &fakeTools{})

	reply, err := engine.Ask(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, "some reply", reply)
}

func TestAskToolFailureFeedsErrorResult(t *testing.T) {
	call := backend.ToolCall{ID: "call_1", Type: "function", Function: backend.FunctionCall{Name: "clock", Arguments: `{}`}}
	completer := &fakeCompleter{responses: []*backend.ChatResponse{
		response(backend.FinishToolCalls, "", call),
		response(backend.FinishStop, "recovered"),
	}}
	tools := &fakeTools{err: fmt.Errorf("tool exploded")}
	engine, _ := newTestEngine(completer, tools)

	reply, err := engine.Ask(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, "recovered", reply)

	second := completer.requests[1]
	assert.Equal(t, "An error occurred while running the tool.", second[len(second)-1].Content)
}

func TestAskToolAbortPropagates(t *testing.T) {
	call := backend.ToolCall{ID: "call_1", Type: "function", Function: backend.FunctionCall{Name: "shutdown", Arguments: `{}`}}
	completer := &fakeCompleter{responses: []*backend.ChatResponse{
		response(backend.FinishToolCalls, "", call),
	}}
	tools := &fakeTools{err: abort.ErrAborted}
	engine, history := newTestEngine(completer, tools)

	_, err := engine.Ask(context.Background(), "q")

	assert.ErrorIs(t, err, abort.ErrAborted)
	assert.Zero(t, history.Len())
}

func TestAskBackendFailureReturnsFallback(t *testing.T) {
	completer := &fakeCompleter{err: fmt.Errorf("connection refused")}
	engine, _ := newTestEngine(completer, &fakeTools{})

	reply, err := engine.Ask(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, GenericErrorReply, reply)
}

func TestAskBackendAbortPropagates(t *testing.T) {
	completer := &fakeCompleter{err: context.Canceled}
	engine, _ := newTestEngine(completer, &fakeTools{})

	_, err := engine.Ask(context.Background(), "q")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestAskIncludesHistoryInRequests(t *testing.T) {
	completer := &fakeCompleter{responses: []*backend.ChatResponse{
		response(backend.FinishStop, "a1"),
		response(backend.FinishStop, "a2"),
	}}
	engine, _ := newTestEngine(completer, &fakeTools{})

	_, err := engine.Ask(context.Background(), "q1")
	require.NoError(t, err)
	_, err = engine.Ask(context.Background(), "q2")
	require.NoError(t, err)

	second := completer.requests[1]
	require.Len(t, second, 4) // system, q1, a1, q2
	assert.Equal(t, "q1", second[1].Content)
	assert.Equal(t, "a1", second[2].Content)
	assert.Equal(t, "q2", second[3].Content)
}
