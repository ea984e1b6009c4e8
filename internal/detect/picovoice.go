package detect

import (
	"fmt"

	cobra "github.com/Picovoice/cobra/binding/go/v2"
	porcupine "github.com/Picovoice/porcupine/binding/go/v3"

	"VoiceChat/internal/audio"
)

// KeywordDetector recognizes a single keyword with a Porcupine model.
// It backs both the wake word and the stop command.
type KeywordDetector struct {
	engine porcupine.Porcupine
}

// NewKeywordDetector loads the keyword model at path.
func NewKeywordDetector(accessKey, path string) (*KeywordDetector, error) {
	p := porcupine.Porcupine{
		AccessKey:    accessKey,
		KeywordPaths: []string{path},
	}
	if err := p.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize keyword detector: %w", err)
	}
	return &KeywordDetector{engine: p}, nil
}

func (d *KeywordDetector) process(frame audio.Frame) (bool, error) {
	index, err := d.engine.Process(frame)
	if err != nil {
		return false, fmt.Errorf("keyword detection failed: %w", err)
	}
	return index >= 0, nil
}

// DetectWakeword implements WakeDetector.
func (d *KeywordDetector) DetectWakeword(frame audio.Frame) (bool, error) {
	return d.process(frame)
}

// DetectStopCommand implements StopDetector.
func (d *KeywordDetector) DetectStopCommand(frame audio.Frame) (bool, error) {
	return d.process(frame)
}

// Close releases the underlying model.
func (d *KeywordDetector) Close() {
	d.engine.Delete()
}

// VAD estimates voice probability per frame using Cobra.
type VAD struct {
	engine cobra.Cobra
}

// NewVAD initializes the voice activity detector.
func NewVAD(accessKey string) (*VAD, error) {
	c := cobra.NewCobra(accessKey)
	if err := c.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize voice detector: %w", err)
	}
	return &VAD{engine: c}, nil
}

// VoiceProbability implements VoiceDetector.
func (v *VAD) VoiceProbability(frame audio.Frame) (float64, error) {
	prob, err := v.engine.Process(frame)
	if err != nil {
		return 0, fmt.Errorf("voice detection failed: %w", err)
	}
	return float64(prob), nil
}

// Close releases the underlying engine.
func (v *VAD) Close() {
	v.engine.Delete()
}
