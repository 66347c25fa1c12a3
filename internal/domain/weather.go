package domain

import (
	"context"
	"strings"
)

// WeatherReport is the outcome of a weather lookup. When Available is false
// the numeric fields carry no meaning and Reason explains why.
type WeatherReport struct {
	Available   bool    `json:"available"`
	Description string  `json:"description,omitempty"`
	TempC       float64 `json:"temp_c"`
	Humidity    float64 `json:"humidity"`
	Reason      string  `json:"reason,omitempty"`
}

// WeatherUnavailable builds a report for a lookup that did not produce data.
func WeatherUnavailable(reason string) WeatherReport {
	return WeatherReport{Reason: reason}
}

// WeatherProvider returns current conditions for a city.
type WeatherProvider interface {
	// Current returns the weather for city. An error means the provider could
	// not be reached or answered with something unusable.
	Current(ctx context.Context, city string) (WeatherReport, error)
}

// IPLocator resolves the city the service is running from.
type IPLocator interface {
	City(ctx context.Context) (string, error)
}

var weatherEmoji = []struct {
	keyword string
	emoji   string
}{
	{"맑", "☀️"},
	{"구름", "☁️"},
	{"비", "🌧️"},
	{"눈", "❄️"},
}

// WeatherEmoji maps a Korean weather description to an emoji. First keyword
// in the table wins; unmatched descriptions get a rainbow.
func WeatherEmoji(desc string) string {
	for _, w := range weatherEmoji {
		if strings.Contains(desc, w.keyword) {
			return w.emoji
		}
	}
	return "🌈"
}

// WeatherText renders the weather property value. Unavailable reports use
// the given fallback text with no emoji.
func (w WeatherReport) WeatherText(fallback string) string {
	if !w.Available {
		return fallback
	}
	return w.Description + " " + WeatherEmoji(w.Description)
}
