// Package detect abstracts the frame classifiers supplied by the
// wake-word and voice-activity engines.
package detect

import "VoiceChat/internal/audio"

// WakeDetector classifies a frame as containing the wake word.
type WakeDetector interface {
	DetectWakeword(frame audio.Frame) (bool, error)
}

// VoiceDetector returns the probability (0..1) that a frame contains
// voice. The caller compares it against a configured threshold.
type VoiceDetector interface {
	VoiceProbability(frame audio.Frame) (float64, error)
}

// StopDetector classifies a frame as containing the spoken stop
// command.
type StopDetector interface {
	DetectStopCommand(frame audio.Frame) (bool, error)
}
