package agents

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeatherClient_Current(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/current.json", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("key"))

		switch r.URL.Query().Get("q") {
		case "Paris":
			w.Write([]byte(`{
				"location": {"name": "Paris", "region": "Ile-de-France", "country": "France"},
				"current": {"temp_c": 21.5, "temp_f": 70.7, "feelslike_c": 20.9, "humidity": 55,
					"wind_kph": 12.3, "condition": {"text": "Partly cloudy"}}
			}`))
		case "Nowhereville":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": {"code": 1006, "message": "No matching location found."}}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	client := NewWeatherClient(srv.URL, "test-key")

	out, err := client.Current(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Contains(t, out, "Paris, Ile-de-France, France")
	assert.Contains(t, out, "Partly cloudy")
	assert.Contains(t, out, "21.5°C")
	assert.Contains(t, out, "55%")

	out, err = client.Current(context.Background(), "Nowhereville")
	require.NoError(t, err, "unknown locations come back as messages, not errors")
	assert.Contains(t, out, "Location 'Nowhereville' not found")

	out, err = client.Current(context.Background(), "anywhere")
	require.NoError(t, err)
	assert.Contains(t, out, "rejected our credentials")
}

func TestExtractLocation(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"What's the weather in Paris?", "Paris"},
		{"weather forecast for New York today", "New York"},
		{"is it raining in San Francisco right now", "San Francisco"},
		{"what is the weather forecast for tomorrow", ""},
		{"tell me about the weather", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, extractLocation(tt.input))
		})
	}
}

func TestWeather_AsksForLocationWhenMissing(t *testing.T) {
	w := NewWeather(NewWeatherClient("http://unused.invalid", "k"))
	out, err := w.Respond(context.Background(), "how is the weather", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Which city or location")
}
