package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
	"github.com/couchcryptid/sunspot-archive-service/internal/observability"
)

// Location sources.
const (
	LocationUser    = "user"
	LocationIP      = "ip"
	LocationDefault = "default"
)

// resolveLocation prefers the observer's city, then the server's IP-derived
// city, then the configured default.
func (p *Pipeline) resolveLocation(ctx context.Context, city string, log *slog.Logger) (string, string) {
	if c := strings.TrimSpace(city); c != "" {
		return c, LocationUser
	}
	if p.stages.Locator != nil {
		c, err := p.stages.Locator.City(ctx)
		if err == nil && c != "" {
			return c, LocationIP
		}
		log.Warn("ip location failed, using default city", "error", err, "default", p.settings.DefaultCity)
	}
	return p.settings.DefaultCity, LocationDefault
}

// lookupWeather never fails: provider errors turn into an unavailable report.
func (p *Pipeline) lookupWeather(ctx context.Context, city string, log *slog.Logger) domain.WeatherReport {
	var report domain.WeatherReport
	if p.stages.Weather == nil {
		report = domain.WeatherUnavailable("weather disabled")
	} else {
		r, err := p.stages.Weather.Current(ctx, city)
		if err != nil {
			log.Warn("weather lookup failed", "city", city, "error", err)
			r = domain.WeatherUnavailable(err.Error())
		}
		report = r
	}
	if !report.Available {
		p.inc(func(m *observability.Metrics) { m.WeatherUnavailable.Inc() })
	}
	return report
}
