package assistant

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"VoiceChat/internal/abort"
	"VoiceChat/internal/audio"
	"VoiceChat/internal/config"
)

// Session is one listening/recording session started by the wake word.
// Frames are handled strictly sequentially; the transcribe and speak
// work runs on its own goroutine while busy is set.
type Session struct {
	id      int64
	manager *Manager

	mu              sync.Mutex
	frames          []audio.Frame
	voiceDetected   bool
	silenceDuration time.Duration
	totalDuration   time.Duration
	busy            bool
}

// ID returns the session's creation timestamp identifier.
func (s *Session) ID() int64 { return s.id }

// HandleFrame reacts to one incoming audio frame. Any error while
// evaluating a frame terminates the session; cancellation is logged
// quietly, anything else as an error.
func (s *Session) HandleFrame(frame audio.Frame) {
	if err := s.handleFrame(frame); err != nil {
		if abort.IsAborted(err) {
			s.logger().Info("stopping session due to abort signal")
		} else {
			s.logger().Error("error handling audio frame", "error", err)
		}
		s.stop()
	}
}

func (s *Session) handleFrame(frame audio.Frame) error {
	// the stop command always wins, even mid-reply
	stop, err := s.manager.deps.StopWord.DetectStopCommand(frame)
	if err != nil {
		return err
	}
	if stop {
		s.handleStopCommand()
		return nil
	}

	// while transcribing or speaking, other audio is ignored
	if s.isBusy() {
		return nil
	}

	prob, err := s.manager.deps.VAD.VoiceProbability(frame)
	if err != nil {
		return err
	}
	isSilence := prob < s.manager.cfg.VoiceThreshold

	frameDur := audio.FrameDuration(frame, config.SampleRate)

	s.mu.Lock()
	s.frames = append(s.frames, frame)
	if isSilence {
		s.silenceDuration += frameDur
	} else {
		s.silenceDuration = 0
		s.voiceDetected = true
	}
	s.totalDuration += frameDur

	voiceDetected := s.voiceDetected
	silence := s.silenceDuration
	total := s.totalDuration
	s.mu.Unlock()

	cfg := s.manager.cfg

	// silence for too long at the beginning, nothing was ever said
	if !voiceDetected && silence >= cfg.OnlySilenceTimeout {
		s.logger().Info("stopping session due to silence")
		s.stop()
		return nil
	}

	// silence after voice, the utterance is complete
	if voiceDetected && silence >= cfg.PostSpeechSilenceTimeout {
		s.logger().Info("audio phrase detected")
		s.beginProcessing()
		return nil
	}

	// speech has gone on long enough, cut it off
	if voiceDetected && total >= cfg.MaxRecordingLength {
		s.logger().Info("audio phrase detected, recording limit reached")
		s.beginProcessing()
		return nil
	}

	// accounting must never run past the cap by more than one frame
	if total > cfg.MaxRecordingLength+frameDur {
		return fmt.Errorf("recording duration %v exceeded limit %v", total, cfg.MaxRecordingLength)
	}

	return nil
}

// beginProcessing marks the session busy and hands the buffered frames
// to the transcribe/dialogue/speak pipeline on its own goroutine so
// frame intake never blocks.
func (s *Session) beginProcessing() {
	s.mu.Lock()
	s.busy = true
	frames := s.frames
	s.mu.Unlock()

	s.manager.notify(StateProcessing)
	go s.transcribeAndSpeak(frames)
}

func (s *Session) transcribeAndSpeak(frames []audio.Frame) {
	if err := s.process(frames); err != nil {
		if abort.IsAborted(err) {
			s.logger().Info("stopping session due to abort signal")
		} else {
			s.logger().Error("error processing utterance", "error", err)
		}
		s.stop()
	}
}

func (s *Session) process(frames []audio.Frame) error {
	ctx := s.manager.ctx
	d := s.manager.deps

	buffer := audio.Concat(frames)
	if len(buffer) == 0 {
		// nothing was captured, go straight back to listening
		s.logger().Info("no audio captured, skipping transcription")
		s.finish()
		return nil
	}

	s.logger().Info("transcribing audio", "samples", len(buffer))
	text, err := d.Transcriber.Transcribe(ctx, buffer)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		s.logger().Info("empty transcription, skipping dialogue")
		s.finish()
		return nil
	}
	s.logger().Debug("heard text", "text", text)

	reply, err := d.Dialogue.Ask(ctx, text)
	if err != nil {
		return err
	}

	s.manager.notify(StateSpeaking)
	if err := d.Speaker.Speak(reply); err != nil {
		return err
	}

	s.finish()
	return nil
}

// finish resets the session for the next utterance, but only if this
// session is still the active one: a session superseded or stopped
// mid-flight must not resurrect itself.
func (s *Session) finish() {
	if !s.manager.isActive(s) {
		return
	}

	s.mu.Lock()
	s.frames = nil
	s.voiceDetected = false
	s.silenceDuration = 0
	s.totalDuration = 0
	s.busy = false
	s.mu.Unlock()

	s.manager.notify(StateListening)
}

func (s *Session) handleStopCommand() {
	s.logger().Info("stopping session and speech due to stop command")
	s.stop()
	s.manager.deps.Speaker.Stop()
}

// stop terminates the session, releasing the active slot.
func (s *Session) stop() {
	s.logger().Info("stopping assistant session")
	s.manager.clear(s)
}

func (s *Session) isBusy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Session) logger() *slog.Logger {
	return s.manager.deps.Logger
}
