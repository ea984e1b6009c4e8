package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
)

// System volume is never lowered below this so the assistant always
// stays audible.
const volumeMinPercent = 70

var volumePattern = regexp.MustCompile(`\[(\d+)%\]`)

// Mixer adjusts the playback volume of a named audio device.
type Mixer struct {
	device string
	index  int
}

// NewMixer creates a mixer for the given amixer control device.
func NewMixer(device string, index int) *Mixer {
	return &Mixer{device: device, index: index}
}

func (m *Mixer) currentPercent(ctx context.Context) (int, error) {
	out, err := exec.CommandContext(ctx, "amixer", "get", m.device).Output()
	if err != nil {
		return 0, fmt.Errorf("amixer get failed: %w", err)
	}
	match := volumePattern.FindSubmatch(out)
	if match == nil {
		return 0, fmt.Errorf("no volume percentage in amixer output")
	}
	return strconv.Atoi(string(match[1]))
}

func (m *Mixer) setPercent(ctx context.Context, percent int) error {
	numid := fmt.Sprintf("numid=%d", m.index)
	value := fmt.Sprintf("%d%%", percent)
	if err := exec.CommandContext(ctx, "amixer", "cset", numid, value).Run(); err != nil {
		return fmt.Errorf("amixer cset failed: %w", err)
	}
	return nil
}

// GetVolume reports the current playback volume.
func GetVolume(mixer *Mixer) Tool {
	return Tool{
		Name:        "getVolume",
		Description: "Get the current volume % of the device.",
		Parameters:  noParameters,
		Run: func(ctx context.Context, rawArgs string) (string, error) {
			percent, err := mixer.currentPercent(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d%%", percent), nil
		},
	}
}

// SetVolume sets the playback volume to an absolute percentage,
// clamped to the minimum.
func SetVolume(mixer *Mixer) Tool {
	return Tool{
		Name:        "setVolume",
		Description: fmt.Sprintf("Set the volume to a specific percentage. Should be no lower than %d%%.", volumeMinPercent),
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"percent": {"type": "number", "description": "The number volume percentage to set, between 0 and 100."}
			},
			"required": ["percent"]
		}`),
		Run: func(ctx context.Context, rawArgs string) (string, error) {
			var args struct {
				Percent int `json:"percent"`
			}
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}
			percent := args.Percent
			if percent < volumeMinPercent {
				percent = volumeMinPercent
			}
			if err := mixer.setPercent(ctx, percent); err != nil {
				return "", err
			}
			return fmt.Sprintf("Volume set to %d%%", percent), nil
		},
	}
}

// AdjustVolume changes the playback volume by a relative amount.
func AdjustVolume(mixer *Mixer) Tool {
	return Tool{
		Name:        "adjustVolume",
		Description: "Increase or decrease the volume by a specified percentage.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"change": {"type": "number", "description": "Can be positive (up) or negative (down)"}
			},
			"required": ["change"]
		}`),
		Run: func(ctx context.Context, rawArgs string) (string, error) {
			var args struct {
				Change int `json:"change"`
			}
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			current, err := mixer.currentPercent(ctx)
			if err != nil {
				return "", err
			}

			next := current + args.Change
			if next > 100 {
				next = 100
			}
			if next < volumeMinPercent {
				next = volumeMinPercent
			}

			if err := mixer.setPercent(ctx, next); err != nil {
				return "", err
			}
			return fmt.Sprintf("Volume adjusted by %d%%. New volume is %d%%", args.Change, next), nil
		},
	}
}
