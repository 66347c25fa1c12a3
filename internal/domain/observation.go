package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date format stored in the observation date property.
const DateLayout = "2006-01-02"

// Submission is what an observer hands in before any enrichment happens.
type Submission struct {
	Name  string
	Memo  string
	City  string // optional; IP-derived when empty
	Image []byte
}

// Validate checks the fields a submission cannot be archived without.
func (s Submission) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(s.Image) == 0 {
		return fmt.Errorf("%w: image is required", ErrValidation)
	}
	return nil
}

// ObservationRecord is one archived sunspot observation. Fields that a
// deployment's property schema does not map are simply not persisted.
type ObservationRecord struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Date         time.Time     `json:"date"`
	Location     string        `json:"location"`
	LocationFrom string        `json:"location_source"` // "user", "ip", "default"
	Weather      WeatherReport `json:"weather"`
	SunspotCount *int          `json:"sunspot_count,omitempty"` // nil when detection did not run
	Memo         string        `json:"memo"`
	OriginalURL  string        `json:"original_url,omitempty"`
	ResultURL    string        `json:"result_url,omitempty"`
}

// NewObservationRecord starts a record for the given submission, dated today
// in loc according to the package clock.
func NewObservationRecord(sub Submission, loc *time.Location) ObservationRecord {
	if loc == nil {
		loc = time.Local
	}
	now := clock.Now().In(loc)
	return ObservationRecord{
		ID:   uuid.NewString(),
		Name: strings.TrimSpace(sub.Name),
		Date: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc),
		Memo: sub.Memo,
	}
}

// DateString formats the observation date as YYYY-MM-DD.
func (r ObservationRecord) DateString() string {
	return r.Date.Format(DateLayout)
}

// Label is the one-line summary shown to the observer after a submission.
func (r ObservationRecord) Label() string {
	if r.SunspotCount == nil {
		return "✅ 기록 저장 완료"
	}
	return fmt.Sprintf("✅ 흑점 %d개 탐지됨 | 기록 저장 완료", *r.SunspotCount)
}

// ObservationArchived is published once an observation has been stored.
type ObservationArchived struct {
	Observation ObservationRecord `json:"observation"`
	PageID      string            `json:"page_id"`
	PageURL     string            `json:"page_url"`
	Slots       SlotOutcome       `json:"slots"`
	ArchivedAt  time.Time         `json:"archived_at"`
}

// NewObservationArchived stamps an archived event with the package clock.
func NewObservationArchived(rec ObservationRecord, archived Archived) ObservationArchived {
	return ObservationArchived{
		Observation: rec,
		PageID:      archived.PageID,
		PageURL:     archived.URL,
		Slots:       archived.Slots,
		ArchivedAt:  clock.Now().UTC(),
	}
}
