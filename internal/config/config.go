package config

import "time"

// Audio capture format. Frames are signed 16-bit PCM at a fixed rate.
const (
	SampleRate  = 16000
	FrameLength = 512 // samples per frame
)

// Playback format produced by the TTS engine.
const TTSSampleRate = 22050

// Config holds application configuration
type Config struct {
	OpenAIBaseURL string // Base URL for the OpenAI-compatible API
	Model         string // Chat completion model
	WhisperModel  string // Speech-to-text model
	AssistantName string // Wake word / spoken name of the assistant
	Timezone      string // IANA timezone used by the clock tool
	Debug         bool

	// Session timing. Thresholds are compared against accumulated frame
	// durations, not wall-clock time.
	OnlySilenceTimeout       time.Duration // give up when nothing but silence follows the wake word
	PostSpeechSilenceTimeout time.Duration // utterance considered complete after this much silence
	MaxRecordingLength       time.Duration // hard cap on a single utterance

	VoiceThreshold float64 // VAD probability at or above which a frame counts as voice

	HistorySize int // retained (question, answer) pairs of chat history

	// TTS engine and playback subprocess configuration
	TTSCommand    string   // e.g. "piper"
	TTSArgs       []string // model/config args, must emit raw PCM on stdout
	PlayerCommand string   // e.g. "aplay"
	PlayerArgs    []string // args for playing raw PCM from stdin
	BeepSound     string   // wake acknowledgement sound file

	// Volume control (amixer) used by the volume tools
	VolumeControlDevice      string
	VolumeControlDeviceIndex int

	// Coordinates the weather tools report on
	WeatherLatitude  float64
	WeatherLongitude float64

	// Keyword models and audio capture device for the detectors
	WakewordPath     string
	StopwordPath     string
	AudioDeviceIndex int // -1 selects the system default microphone

	StatusAddr string // listen address for the websocket status server, empty disables
	DBPath     string // sqlite transcript database path
}

// Default returns the configuration defaults used when flags are not set.
func Default() Config {
	return Config{
		OpenAIBaseURL:            "https://api.openai.com/v1",
		Model:                    "gpt-4o-mini",
		WhisperModel:             "whisper-1",
		AssistantName:            "jarvis",
		Timezone:                 "Europe/London",
		OnlySilenceTimeout:       4 * time.Second,
		PostSpeechSilenceTimeout: 1500 * time.Millisecond,
		MaxRecordingLength:       15 * time.Second,
		VoiceThreshold:           0.7,
		HistorySize:              10,
		TTSCommand:               "piper",
		TTSArgs:                  []string{"--model", "assets/voice.onnx", "--config", "assets/voice.onnx.json", "--output-raw"},
		PlayerCommand:            "aplay",
		PlayerArgs:               []string{"-r", "22050", "-f", "S16_LE", "-t", "raw", "-"},
		BeepSound:                "assets/beep.wav",
		VolumeControlDevice:      "PCM",
		VolumeControlDeviceIndex: 1,
		WeatherLatitude:          40.5853,
		WeatherLongitude:         -105.0844,
		WakewordPath:             "assets/wakeword.ppn",
		StopwordPath:             "assets/stopword.ppn",
		AudioDeviceIndex:         -1,
		StatusAddr:               ":8686",
		DBPath:                   "voicechat.db",
	}
}
