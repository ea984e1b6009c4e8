// Package dialogue turns a transcribed user utterance into a spoken
// reply by looping against the language-model backend and executing
// any tool calls it requests.
package dialogue

import (
	"context"
	"fmt"
	"log/slog"

	"VoiceChat/internal/abort"
	"VoiceChat/internal/backend"
)

// Fallback replies used when the backend cannot produce an answer.
const (
	GenericErrorReply = "I'm sorry, I ran into an issue. Please try again."
	FilteredReply     = "I'm sorry, I can't respond to that."
)

// Completer is the dialogue backend.
type Completer interface {
	Complete(ctx context.Context, messages []backend.ChatMessage, tools []backend.ToolDef) (*backend.ChatResponse, error)
}

// ToolRunner executes named tools on behalf of the model.
type ToolRunner interface {
	Definitions() []backend.ToolDef
	Run(ctx context.Context, name, rawArgs string) (string, error)
}

// Recorder persists completed exchanges.
type Recorder interface {
	SaveExchange(ctx context.Context, question, answer string) error
}

// Engine drives the multi-round tool-calling conversation.
type Engine struct {
	completer    Completer
	tools        ToolRunner
	history      *History
	recorder     Recorder // optional
	systemPrompt string
	logger       *slog.Logger
}

// NewEngine creates a dialogue engine. recorder may be nil.
func NewEngine(completer Completer, tools ToolRunner, history *History, recorder Recorder, assistantName string, logger *slog.Logger) *Engine {
	prompt := fmt.Sprintf(
		"You are a british helpful home assistant named %s. Provide short, concise "+
			"responses to user questions that can easily be converted from text to speech, with minimal "+
			"punctuation and abbreviations. Aim for a friendly, conversational tone that is upbeat and "+
			"engaging.", assistantName)

	return &Engine{
		completer:    completer,
		tools:        tools,
		history:      history,
		recorder:     recorder,
		systemPrompt: prompt,
		logger:       logger,
	}
}

// Ask sends the question through the tool-calling loop and returns the
// reply. The reply is never empty: any unrecoverable condition yields a
// fallback string. Only cancellation returns a non-nil error.
func (e *Engine) Ask(ctx context.Context, question string) (string, error) {
	// messages scoped to this question only; tool exchanges are not
	// persisted to the chat history
	run := []backend.ChatMessage{
		{Role: backend.RoleUser, Content: question},
	}

	var reply string
	natural := false

	for {
		messages := make([]backend.ChatMessage, 0, 1+e.history.Len()+len(run))
		messages = append(messages, backend.ChatMessage{Role: backend.RoleSystem, Content: e.systemPrompt})
		messages = append(messages, e.history.Messages()...)
		messages = append(messages, run...)

		completion, err := e.completer.Complete(ctx, messages, e.tools.Definitions())
		if err != nil {
			if abort.IsAborted(err) {
				return "", err
			}
			e.logger.Error("chat completion failed", "error", err)
			return GenericErrorReply, nil
		}

		choice := completion.Choices[0]

		if done, terminating, isNatural := terminatingReply(choice.FinishReason, choice.Message, e.logger); done {
			reply = terminating
			natural = isNatural
			break
		}

		// no tool call means the content is the final reply
		if !hasToolCall(choice.FinishReason, choice.Message) {
			reply = choice.Message.Content
			natural = true
			break
		}

		run = append(run, choice.Message)

		// only the first tool call of a round is executed
		call := choice.Message.ToolCalls[0]
		e.logger.Debug("running tool", "tool", call.Function.Name)

		result, err := e.tools.Run(ctx, call.Function.Name, call.Function.Arguments)
		if err != nil {
			// a tool may abort the whole conversation (e.g. shutdown)
			if abort.IsAborted(err) {
				return "", err
			}
			e.logger.Error("tool error", "tool", call.Function.Name, "error", err)
			result = "An error occurred while running the tool."
		}

		run = append(run, backend.ChatMessage{
			Role:       backend.RoleTool,
			Content:    result,
			ToolCallID: call.ID,
		})
	}

	if reply == "" {
		e.logger.Error("no reply from chat backend")
		return GenericErrorReply, nil
	}

	if natural {
		e.history.Add(question, reply)
		if e.recorder != nil {
			go func() {
				if err := e.recorder.SaveExchange(context.Background(), question, reply); err != nil {
					e.logger.Error("failed to save exchange", "error", err)
				}
			}()
		}
	}

	return reply, nil
}

func hasToolCall(finishReason string, msg backend.ChatMessage) bool {
	return finishReason == backend.FinishToolCalls && len(msg.ToolCalls) > 0
}

// terminatingReply maps backend policy outcomes to user-facing replies.
// Returns done=false when the loop should continue; natural is true
// only when the reply is actual model content worth remembering.
func terminatingReply(finishReason string, msg backend.ChatMessage, logger *slog.Logger) (done bool, reply string, natural bool) {
	switch {
	case finishReason == backend.FinishStop:
		if msg.Content == "" {
			return true, GenericErrorReply, false
		}
		return true, msg.Content, true

	case finishReason == backend.FinishLength:
		logger.Error("conversation was too long for the context window")
		return true, GenericErrorReply, false

	case finishReason == backend.FinishContentFilter:
		logger.Error("content was filtered due to policy violation")
		return true, FilteredReply, false

	case msg.Refusal != "":
		logger.Error("model refused to fulfill the request", "refusal", msg.Refusal)
		return true, GenericErrorReply, false
	}

	return false, "", false
}
