package tools

import (
	"context"
	"log/slog"

	"VoiceChat/internal/abort"
)

// Shutdown lets the user turn the assistant off by voice. The goodbye
// is spoken before the root scope is cancelled so playback is not cut
// off by its own shutdown.
func Shutdown(root *abort.Scope, speaker interface{ Speak(text string) error }, logger *slog.Logger) Tool {
	return Tool{
		Name:        "shutdown",
		Description: "Shuts down the assistant.",
		Parameters:  noParameters,
		Run: func(ctx context.Context, rawArgs string) (string, error) {
			if err := speaker.Speak("Of course. Shutting down now."); err != nil {
				logger.Warn("failed to speak shutdown message", "error", err)
			}
			logger.Info("received shutdown command from user, shutting down assistant")
			root.Cancel()
			return "", abort.ErrAborted
		},
	}
}
