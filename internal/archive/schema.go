package archive

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default_schema.yaml
var defaultSchema []byte

// PropertyNames maps observation fields to database property names. An empty
// name means the field is not persisted.
type PropertyNames struct {
	Name         string `yaml:"name"`
	Date         string `yaml:"date"`
	Location     string `yaml:"location"`
	SunspotCount string `yaml:"sunspot_count"`
	Weather      string `yaml:"weather"`
	Temperature  string `yaml:"temperature"`
	Humidity     string `yaml:"humidity"`
	Memo         string `yaml:"memo"`
}

// SlotKeywords are the heading substrings that mark image slots.
type SlotKeywords struct {
	Original string `yaml:"original"`
	Result   string `yaml:"result"`
}

// Schema describes how an observation maps onto one database.
type Schema struct {
	Properties   PropertyNames `yaml:"properties"`
	Slots        SlotKeywords  `yaml:"slots"`
	SeedHeadings bool          `yaml:"seed_headings"`
}

// DefaultSchema returns the built-in schema.
func DefaultSchema() Schema {
	s, err := ParseSchema(defaultSchema)
	if err != nil {
		panic(fmt.Sprintf("embedded schema: %v", err))
	}
	return s
}

// LoadSchema reads a schema file, or returns the built-in schema for an empty path.
func LoadSchema(path string) (Schema, error) {
	if path == "" {
		return DefaultSchema(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("read schema: %w", err)
	}
	return ParseSchema(data)
}

// ParseSchema decodes and validates a YAML schema.
func ParseSchema(data []byte) (Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schema{}, fmt.Errorf("parse schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

// Validate checks that the schema can produce a page.
func (s Schema) Validate() error {
	if s.Properties.Name == "" {
		return errors.New("schema: properties.name (title property) is required")
	}
	if s.Slots.Original == "" || s.Slots.Result == "" {
		return errors.New("schema: slots.original and slots.result are required")
	}
	return nil
}

// PropertyValues renders the record into database property values. Temperature
// and humidity are omitted when the weather was unavailable, and the sunspot
// count is omitted when detection did not run.
func (s Schema) PropertyValues(rec domain.ObservationRecord, weatherFallback string) []domain.Property {
	p := s.Properties
	props := []domain.Property{
		{Name: p.Name, Kind: domain.PropertyTitle, Text: rec.Name},
	}

	addText := func(name string, kind domain.PropertyKind, text string) {
		if name != "" {
			props = append(props, domain.Property{Name: name, Kind: kind, Text: text})
		}
	}
	addNumber := func(name string, v float64) {
		if name != "" {
			props = append(props, domain.Property{Name: name, Kind: domain.PropertyNumber, Number: v})
		}
	}

	addText(p.Date, domain.PropertyDate, rec.DateString())
	addText(p.Location, domain.PropertyRichText, rec.Location)
	if rec.SunspotCount != nil {
		addNumber(p.SunspotCount, float64(*rec.SunspotCount))
	}
	addText(p.Weather, domain.PropertyRichText, rec.Weather.WeatherText(weatherFallback))
	if rec.Weather.Available {
		addNumber(p.Temperature, rec.Weather.TempC)
		addNumber(p.Humidity, rec.Weather.Humidity)
	}
	addText(p.Memo, domain.PropertyRichText, rec.Memo)

	return props
}

// SeedBlocks returns the slot headings to create with the page, if requested.
func (s Schema) SeedBlocks() []domain.Block {
	if !s.SeedHeadings {
		return nil
	}
	return []domain.Block{domain.Heading2(s.Slots.Original), domain.Heading2(s.Slots.Result)}
}
