package speech

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"VoiceChat/internal/abort"
)

// Speaker converts text to audio through the supervised TTS engine and
// plays it with a fresh playback subprocess per utterance. At most one
// speaking operation is ever live.
type Speaker struct {
	engine        *Engine
	root          *abort.Scope
	playerCommand string
	playerArgs    []string
	logger        *slog.Logger

	mu      sync.Mutex
	current *abort.Scope // scope of the in-flight speaking operation
}

// NewSpeaker creates a speaker. Speaking operations run in child
// scopes of root, so cancelling root interrupts playback while
// interrupting playback never affects root.
func NewSpeaker(engine *Engine, root *abort.Scope, playerCommand string, playerArgs []string, logger *slog.Logger) *Speaker {
	return &Speaker{
		engine:        engine,
		root:          root,
		playerCommand: playerCommand,
		playerArgs:    playerArgs,
		logger:        logger,
	}
}

// Speak synthesizes text and blocks until playback completes. Any
// in-flight playback is stopped and discarded first. Returns nil when
// playback is interrupted by cancellation.
func (s *Speaker) Speak(text string) error {
	s.Stop()

	scope := s.root.NewChild()
	s.mu.Lock()
	s.current = scope
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.current == scope {
			s.current = nil
		}
		s.mu.Unlock()
	}()

	s.logger.Info("speaking", "text", text)

	// read the handle fresh: it is replaced whenever the engine restarts
	proc := s.engine.Process()
	if proc == nil {
		return fmt.Errorf("tts engine is not running")
	}

	player := exec.Command(s.playerCommand, s.playerArgs...)
	playerIn, err := player.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to create player stdin pipe: %w", err)
	}

	if err := player.Start(); err != nil {
		return fmt.Errorf("failed to start player: %w", err)
	}

	scope.OnCancel(func() {
		player.Process.Kill()
	})

	// pipe the engine's synthesized audio into the player
	go func() {
		_, copyErr := io.Copy(playerIn, proc.Stdout())
		if copyErr != nil && !isBrokenPipe(copyErr) && !scope.Cancelled() {
			s.logger.Error("error piping audio to player", "error", copyErr)
		}
		playerIn.Close()
	}()

	// write the text and close stdin so the engine flushes
	if _, err := io.WriteString(proc.Stdin(), text); err != nil && !isBrokenPipe(err) {
		s.logger.Error("error writing text to tts engine", "error", err)
	}
	proc.Stdin().Close()

	err = player.Wait()
	if scope.Cancelled() {
		s.logger.Debug("playback interrupted")
		return nil
	}
	if err != nil {
		return fmt.Errorf("player failed: %w", err)
	}

	s.logger.Info("speaking finished")
	return nil
}

// Stop interrupts the in-flight speaking operation, if any.
func (s *Speaker) Stop() {
	s.mu.Lock()
	scope := s.current
	s.current = nil
	s.mu.Unlock()

	if scope == nil {
		return
	}

	s.logger.Info("stopping speaking")
	scope.Cancel()
}

// isBrokenPipe reports whether err is an expected broken-pipe error
// caused by killing the player mid-stream.
func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
