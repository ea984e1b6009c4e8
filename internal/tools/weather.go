package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"VoiceChat/internal/cache"
)

const weatherCacheTTL = 15 * time.Minute

// WeatherService fetches forecasts from the weather.gov API for a
// fixed location. Forecast URLs are resolved once; forecast bodies are
// cached briefly so repeated questions don't hammer the API.
type WeatherService struct {
	client    *http.Client
	baseURL   string
	latitude  float64
	longitude float64
	responses *cache.Cache
	logger    *slog.Logger

	mu   sync.Mutex
	urls *forecastURLs
}

type forecastURLs struct {
	Forecast       string `json:"forecast"`
	ForecastHourly string `json:"forecastHourly"`
}

// NewWeatherService creates a weather service for the given
// coordinates.
func NewWeatherService(latitude, longitude float64, logger *slog.Logger) *WeatherService {
	return &WeatherService{
		client:    &http.Client{Timeout: 30 * time.Second},
		baseURL:   "https://api.weather.gov",
		latitude:  latitude,
		longitude: longitude,
		responses: cache.New(weatherCacheTTL),
		logger:    logger,
	}
}

func (w *WeatherService) fetchJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("weather API returned status %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (w *WeatherService) forecastURLsFor(ctx context.Context) (*forecastURLs, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.urls != nil {
		return w.urls, nil
	}

	var points struct {
		Properties forecastURLs `json:"properties"`
	}
	url := fmt.Sprintf("%s/points/%g,%g", w.baseURL, w.latitude, w.longitude)
	if err := w.fetchJSON(ctx, url, &points); err != nil {
		return nil, fmt.Errorf("failed to resolve forecast urls: %w", err)
	}

	w.urls = &points.Properties
	w.logger.Info("resolved forecast urls", "latitude", w.latitude, "longitude", w.longitude)
	return w.urls, nil
}

func (w *WeatherService) forecast(ctx context.Context, hourly bool) (string, error) {
	urls, err := w.forecastURLsFor(ctx)
	if err != nil {
		return "", err
	}

	url := urls.Forecast
	if hourly {
		url = urls.ForecastHourly
	}

	key := cache.Key("forecast", url)
	if cached, ok := w.responses.Get(key); ok {
		w.logger.Debug("serving forecast from cache")
		return cached, nil
	}

	var body struct {
		Properties json.RawMessage `json:"properties"`
	}
	if err := w.fetchJSON(ctx, url, &body); err != nil {
		return "", fmt.Errorf("failed to fetch forecast: %w", err)
	}

	forecast := string(body.Properties)
	w.responses.Put(key, forecast)
	return forecast, nil
}

// GetWeatherForecast returns the daily forecast tool.
func GetWeatherForecast(service *WeatherService) Tool {
	return Tool{
		Name:        "getWeatherForecast",
		Description: "Gets the weather forecast.",
		Parameters:  noParameters,
		Run: func(ctx context.Context, rawArgs string) (string, error) {
			return service.forecast(ctx, false)
		},
	}
}

// GetHourlyWeatherForecast returns the hourly forecast tool.
func GetHourlyWeatherForecast(service *WeatherService) Tool {
	return Tool{
		Name:        "getHourlyWeatherForecast",
		Description: "Gets the hourly weather forecast.",
		Parameters:  noParameters,
		Run: func(ctx context.Context, rawArgs string) (string, error) {
			return service.forecast(ctx, true)
		},
	}
}
