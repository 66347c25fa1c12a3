package domain

import "time"

// Submission outcomes recorded in the ledger.
const (
	StatusArchived = "archived"
	StatusPartial  = "partial"
	StatusFailed   = "failed"
)

// LedgerEntry is the local audit record of one submission, written whether
// or not the archive succeeded.
type LedgerEntry struct {
	ObservationID    string
	Name             string
	ObservedOn       string
	Location         string
	SunspotCount     *int
	PageID           string
	PageURL          string
	OriginalAttached bool
	ResultAttached   bool
	Status           string
	Error            string
	RecordedAt       time.Time
}

// NewLedgerEntry summarizes a submission outcome. A page that was created
// before err occurred is reported as partial.
func NewLedgerEntry(rec ObservationRecord, archived Archived, err error) LedgerEntry {
	e := LedgerEntry{
		ObservationID:    rec.ID,
		Name:             rec.Name,
		ObservedOn:       rec.DateString(),
		Location:         rec.Location,
		SunspotCount:     rec.SunspotCount,
		PageID:           archived.PageID,
		PageURL:          archived.URL,
		OriginalAttached: archived.Slots.OriginalAttached,
		ResultAttached:   archived.Slots.ResultAttached,
		Status:           StatusArchived,
		RecordedAt:       clock.Now().UTC(),
	}
	if err != nil {
		e.Error = err.Error()
		e.Status = StatusFailed
		if archived.PageID != "" {
			e.Status = StatusPartial
		}
	}
	return e
}
