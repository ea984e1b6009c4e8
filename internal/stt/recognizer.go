// Package stt transcribes captured audio through a Whisper-compatible
// speech-to-text API.
package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"VoiceChat/internal/audio"
)

// Transcriber converts a captured audio buffer to text.
type Transcriber interface {
	Transcribe(ctx context.Context, buffer audio.Frame) (string, error)
}

// Recognizer implements Transcriber against an OpenAI-compatible
// transcriptions endpoint.
type Recognizer struct {
	baseURL    string
	model      string
	sampleRate int
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
}

// NewRecognizer creates a Whisper transcription client.
func NewRecognizer(baseURL, model string, sampleRate int, logger *slog.Logger, tracer trace.Tracer, meter metric.Meter) *Recognizer {
	return &Recognizer{
		baseURL:    baseURL,
		model:      model,
		sampleRate: sampleRate,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
		tracer:     tracer,
		meter:      meter,
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads the buffer as a WAV file and returns the
// transcription text. An empty buffer returns an empty string without
// calling the service.
func (r *Recognizer) Transcribe(ctx context.Context, buffer audio.Frame) (string, error) {
	if len(buffer) == 0 {
		return "", nil
	}

	ctx, span := r.tracer.Start(ctx, "transcription_api_call")
	defer span.End()

	start := time.Now()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio_buffer.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audio.EncodeWAV(buffer, r.sampleRate)); err != nil {
		return "", fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := writer.WriteField("model", r.model); err != nil {
		return "", fmt.Errorf("failed to write model field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("content-type", writer.FormDataContentType())

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error: %s - %s", resp.Status, string(respBody))
	}

	var apiResp transcriptionResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	duration := time.Since(start)
	histogram, err := r.meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)
	if err == nil {
		histogram.Record(ctx, float64(duration.Milliseconds()))
	}

	r.logger.Info("transcription complete", "chars", len(apiResp.Text))
	return apiResp.Text, nil
}
