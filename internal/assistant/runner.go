package assistant

import (
	"log/slog"

	"VoiceChat/internal/abort"
	"VoiceChat/internal/audio"
	"VoiceChat/internal/detect"
)

// Chime plays a short acknowledgement sound. Implementations log their
// own failures; playback is best effort.
type Chime interface {
	Play()
}

// Runner feeds captured audio frames through wake word detection and
// into the active session.
type Runner struct {
	manager *Manager
	wake    detect.WakeDetector
	chime   Chime // optional
	logger  *slog.Logger
}

// NewRunner wires a frame driver onto the session manager.
func NewRunner(m *Manager, wake detect.WakeDetector, chime Chime, logger *slog.Logger) *Runner {
	return &Runner{manager: m, wake: wake, chime: chime, logger: logger}
}

// HandleFrame processes one captured frame. The wake word always wins:
// it replaces whatever session is running, even mid-reply.
func (r *Runner) HandleFrame(frame audio.Frame) error {
	woke, err := r.wake.DetectWakeword(frame)
	if err != nil {
		return err
	}

	if woke {
		r.logger.Info("wakeword detected")
		if r.chime != nil {
			go r.chime.Play()
		}
		r.manager.StopActive()
		if _, err := r.manager.TryStart(frame); err != nil {
			return err
		}
		return nil
	}

	if s := r.manager.Active(); s != nil {
		s.HandleFrame(frame)
	}
	return nil
}

// Run pulls frames from source until the scope is cancelled. Frame
// handling errors are logged and the loop keeps going; only a source
// read failure or cancellation ends it.
func (r *Runner) Run(source audio.FrameSource, scope *abort.Scope) error {
	if err := source.Start(); err != nil {
		return err
	}
	defer source.Stop()

	for {
		if scope.Cancelled() {
			return nil
		}

		frame, err := source.Read()
		if err != nil {
			if scope.Cancelled() {
				return nil
			}
			return err
		}

		if err := r.HandleFrame(frame); err != nil {
			r.logger.Error("error handling audio frame", "error", err)
		}
	}
}
