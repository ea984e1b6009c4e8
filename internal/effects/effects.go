// Package effects plays short notification sounds through the system
// audio player.
package effects

import (
	"log/slog"
	"os/exec"
)

// Beep plays the wake acknowledgement sound. Playback is best effort;
// a missing player or sound file never takes the assistant down.
type Beep struct {
	command string
	path    string
	logger  *slog.Logger
}

// NewBeep creates a beep player that runs command with the sound file
// path as its argument.
func NewBeep(command, path string, logger *slog.Logger) *Beep {
	return &Beep{command: command, path: path, logger: logger}
}

// Play plays the sound once, blocking until playback ends.
func (b *Beep) Play() {
	if err := exec.Command(b.command, b.path).Run(); err != nil {
		b.logger.Warn("failed to play notification sound", "path", b.path, "error", err)
	}
}
