package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/nakamo-io/supportflow/ai/core/llm"
	"github.com/nakamo-io/supportflow/ai/routing"
)

// WeatherClient talks to the weatherapi.com current-conditions endpoint.
type WeatherClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewWeatherClient creates a weather API client. baseURL defaults to the
// public weatherapi.com endpoint when empty.
func NewWeatherClient(baseURL, apiKey string) *WeatherClient {
	if baseURL == "" {
		baseURL = "https://api.weatherapi.com/v1"
	}
	return &WeatherClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

type weatherResponse struct {
	Location struct {
		Name    string `json:"name"`
		Region  string `json:"region"`
		Country string `json:"country"`
	} `json:"location"`
	Current struct {
		TempC      float64 `json:"temp_c"`
		TempF      float64 `json:"temp_f"`
		FeelslikeC float64 `json:"feelslike_c"`
		Humidity   int     `json:"humidity"`
		WindKph    float64 `json:"wind_kph"`
		Condition  struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

type weatherAPIError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Current fetches current conditions for a location and returns a readable
// summary. Known API rejections (unknown location, bad key) come back as
// message strings, not errors, so the caller can relay them verbatim.
func (c *WeatherClient) Current(ctx context.Context, location string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "weather rate limit wait")
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", location)
	q.Set("aqi", "no")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/current.json?"+q.Encode(), nil)
	if err != nil {
		return "", errors.Wrap(err, "build weather request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "weather request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var body weatherResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return "", errors.Wrap(err, "decode weather response")
		}
		return formatWeather(body), nil
	case resp.StatusCode == http.StatusBadRequest:
		var apiErr weatherAPIError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Code == 1006 {
			return fmt.Sprintf("Location '%s' not found. Please check the spelling and try again.", location), nil
		}
		return fmt.Sprintf("The weather service could not handle the location '%s'.", location), nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "The weather service rejected our credentials. Please report this to support.", nil
	default:
		return "", errors.Errorf("weather service returned status %d", resp.StatusCode)
	}
}

func formatWeather(w weatherResponse) string {
	place := w.Location.Name
	if w.Location.Region != "" && w.Location.Region != w.Location.Name {
		place += ", " + w.Location.Region
	}
	if w.Location.Country != "" {
		place += ", " + w.Location.Country
	}
	return fmt.Sprintf(
		"Current weather in %s: %s, %.1f°C (%.1f°F), feels like %.1f°C. Humidity %d%%, wind %.1f km/h.",
		place, w.Current.Condition.Text,
		w.Current.TempC, w.Current.TempF, w.Current.FeelslikeC,
		w.Current.Humidity, w.Current.WindKph,
	)
}

// Weather answers current-conditions questions via the weather API.
type Weather struct {
	client *WeatherClient
}

// NewWeather creates the weather responder.
func NewWeather(client *WeatherClient) *Weather {
	return &Weather{client: client}
}

// Responder implements Adapter.
func (w *Weather) Responder() routing.Responder {
	return routing.ResponderWeather
}

// Respond implements Adapter. When no location can be read from the input
// it asks for one instead of failing.
func (w *Weather) Respond(ctx context.Context, input string, _ []llm.Message) (string, error) {
	location := extractLocation(input)
	if location == "" {
		return "I can look up current weather for you. Which city or location should I check?", nil
	}
	return w.client.Current(ctx, location)
}

var locationPattern = regexp.MustCompile(`(?i)\b(?:in|for|at)\s+([a-zA-Z][a-zA-Z .'\-]*)`)

// Words that follow "in"/"for" without naming a place.
var locationStopWords = map[string]bool{
	"today": true, "tomorrow": true, "now": true, "right": true,
	"the": true, "this": true, "my": true, "general": true, "detail": true,
}

func extractLocation(input string) string {
	m := locationPattern.FindStringSubmatch(input)
	if m == nil {
		return ""
	}
	words := strings.Fields(strings.TrimRight(m[1], " .'-"))
	for len(words) > 0 && locationStopWords[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	for len(words) > 0 && locationStopWords[strings.ToLower(words[0])] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}
