package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"VoiceChat/internal/abort"
	"VoiceChat/internal/assistant"
	"VoiceChat/internal/audio"
	"VoiceChat/internal/backend"
	"VoiceChat/internal/config"
	"VoiceChat/internal/detect"
	"VoiceChat/internal/dialogue"
	"VoiceChat/internal/effects"
	"VoiceChat/internal/speech"
	"VoiceChat/internal/status"
	"VoiceChat/internal/store"
	"VoiceChat/internal/stt"
	"VoiceChat/internal/telemetry"
	"VoiceChat/internal/tools"
)

func main() {
	cfg := config.Default()

	flag.StringVar(&cfg.OpenAIBaseURL, "base-url", cfg.OpenAIBaseURL, "Base URL of the OpenAI-compatible API")
	flag.StringVar(&cfg.Model, "model", cfg.Model, "Chat completion model")
	flag.StringVar(&cfg.WhisperModel, "whisper-model", cfg.WhisperModel, "Speech-to-text model")
	flag.StringVar(&cfg.AssistantName, "name", cfg.AssistantName, "Spoken name of the assistant")
	flag.StringVar(&cfg.Timezone, "timezone", cfg.Timezone, "IANA timezone for the clock tool")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")
	flag.StringVar(&cfg.WakewordPath, "wakeword", cfg.WakewordPath, "Path to the wake word keyword model")
	flag.StringVar(&cfg.StopwordPath, "stopword", cfg.StopwordPath, "Path to the stop command keyword model")
	flag.IntVar(&cfg.AudioDeviceIndex, "audio-device", cfg.AudioDeviceIndex, "Microphone device index (-1 for default)")
	flag.StringVar(&cfg.StatusAddr, "status-addr", cfg.StatusAddr, "Websocket status server address (empty disables)")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Transcript database path")
	flag.Parse()

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	logger, err := telemetry.InitLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := context.Background()
	tracer, meter, cleanup, err := telemetry.InitTelemetry(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer cleanup()

	if cfg.Debug {
		logger.Info("Debug mode enabled")
	}

	accessKey := os.Getenv("PICOVOICE_ACCESS_KEY")
	if accessKey == "" {
		return fmt.Errorf("PICOVOICE_ACCESS_KEY environment variable not set")
	}

	root := abort.NewRootScope()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig.String())
		root.Cancel()
	}()

	wake, err := detect.NewKeywordDetector(accessKey, cfg.WakewordPath)
	if err != nil {
		return err
	}
	defer wake.Close()

	stopWord, err := detect.NewKeywordDetector(accessKey, cfg.StopwordPath)
	if err != nil {
		return err
	}
	defer stopWord.Close()

	vad, err := detect.NewVAD(accessKey)
	if err != nil {
		return err
	}
	defer vad.Close()

	transcripts, err := store.Open(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("failed to open transcript store: %w", err)
	}
	defer transcripts.Close()

	ttsEngine := speech.NewEngine(cfg.TTSCommand, cfg.TTSArgs, logger)
	if err := ttsEngine.Start(); err != nil {
		return fmt.Errorf("failed to start TTS engine: %w", err)
	}
	defer ttsEngine.Shutdown()

	speaker := speech.NewSpeaker(ttsEngine, root, cfg.PlayerCommand, cfg.PlayerArgs, logger)

	mixer := tools.NewMixer(cfg.VolumeControlDevice, cfg.VolumeControlDeviceIndex)
	weather := tools.NewWeatherService(cfg.WeatherLatitude, cfg.WeatherLongitude, logger)
	registry := tools.NewRegistry(logger,
		tools.Clock(cfg.Timezone),
		tools.Calculate(),
		tools.CalculateWithSubstitutes(),
		tools.GetVolume(mixer),
		tools.SetVolume(mixer),
		tools.AdjustVolume(mixer),
		tools.GetWeatherForecast(weather),
		tools.GetHourlyWeatherForecast(weather),
		tools.Shutdown(root, speaker, logger),
	)

	completer := backend.NewClient(cfg.OpenAIBaseURL, cfg.Model, logger, tracer, meter)
	history := dialogue.NewHistory(cfg.HistorySize)
	engine := dialogue.NewEngine(completer, registry, history, transcripts, cfg.AssistantName, logger)

	transcriber := stt.NewRecognizer(cfg.OpenAIBaseURL, cfg.WhisperModel, config.SampleRate, logger, tracer, meter)

	var notifier assistant.Notifier
	if cfg.StatusAddr != "" {
		statusServer := status.NewServer(cfg.StatusAddr, logger)
		statusServer.Start()
		defer statusServer.Shutdown(context.Background())
		notifier = statusServer
	}

	manager := assistant.NewManager(assistant.Deps{
		VAD:         vad,
		StopWord:    stopWord,
		Transcriber: transcriber,
		Dialogue:    engine,
		Speaker:     speaker,
		Notifier:    notifier,
		Logger:      logger,
	}, cfg, root)

	beep := effects.NewBeep(cfg.PlayerCommand, cfg.BeepSound, logger)
	runner := assistant.NewRunner(manager, wake, beep, logger)

	source := audio.NewRecorder(cfg.AudioDeviceIndex, config.FrameLength)

	logger.Info("assistant ready", "name", cfg.AssistantName)
	if err := runner.Run(source, root); err != nil {
		return fmt.Errorf("assistant run loop failed: %w", err)
	}

	logger.Info("assistant stopped")
	return nil
}
