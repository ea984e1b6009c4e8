package audio

import (
	"fmt"

	pvrecorder "github.com/Picovoice/pvrecorder/binding/go"
)

// Recorder captures microphone frames through pvrecorder. It
// implements FrameSource.
type Recorder struct {
	rec *pvrecorder.PvRecorder
}

// NewRecorder creates a recorder on the given audio device. Device
// index -1 selects the system default.
func NewRecorder(deviceIndex, frameLength int) *Recorder {
	return &Recorder{
		rec: &pvrecorder.PvRecorder{
			DeviceIndex:         deviceIndex,
			FrameLength:         frameLength,
			BufferedFramesCount: 10,
		},
	}
}

// Start opens the device and begins capturing.
func (r *Recorder) Start() error {
	if err := r.rec.Init(); err != nil {
		return fmt.Errorf("failed to initialize recorder: %w", err)
	}
	if err := r.rec.Start(); err != nil {
		r.rec.Delete()
		return fmt.Errorf("failed to start recorder: %w", err)
	}
	return nil
}

// Read blocks until the next frame is available.
func (r *Recorder) Read() (Frame, error) {
	pcm, err := r.rec.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read audio frame: %w", err)
	}
	return Frame(pcm), nil
}

// Stop stops capture and releases the device.
func (r *Recorder) Stop() error {
	err := r.rec.Stop()
	r.rec.Delete()
	return err
}
