// Package audio defines the PCM frame type shared by the capture,
// detection and transcription layers.
package audio

import (
	"bytes"
	"encoding/binary"
	"time"
)

// Frame is one fixed-length chunk of signed 16-bit PCM samples.
type Frame []int16

// FrameSource produces a sequential stream of fixed-length PCM frames
// from the microphone.
type FrameSource interface {
	Start() error

	// Read blocks until the next frame is available.
	Read() (Frame, error)

	Stop() error
}

// FrameDuration returns the play duration of a frame at the given
// sample rate.
func FrameDuration(frame Frame, sampleRate int) time.Duration {
	return time.Duration(len(frame)) * time.Second / time.Duration(sampleRate)
}

// Concat joins frames into a single buffer.
func Concat(frames []Frame) Frame {
	total := 0
	for _, f := range frames {
		total += len(f)
	}
	out := make(Frame, 0, total)
	for _, f := range frames {
		out = append(out, f...)
	}
	return out
}

// EncodeWAV wraps PCM samples in a minimal mono 16-bit WAV container
// for upload to the transcription service.
func EncodeWAV(samples Frame, sampleRate int) []byte {
	dataLen := len(samples) * 2
	buf := bytes.NewBuffer(make([]byte, 0, 44+dataLen))

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*2)) // byte rate
	binary.Write(buf, binary.LittleEndian, uint16(2))            // block align
	binary.Write(buf, binary.LittleEndian, uint16(16))           // bits per sample

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataLen))
	for _, s := range samples {
		binary.Write(buf, binary.LittleEndian, s)
	}

	return buf.Bytes()
}
