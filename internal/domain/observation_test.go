package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmission_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		err := Submission{Name: "Kim", Image: []byte{0xff}}.Validate()
		require.NoError(t, err)
	})

	t.Run("blank name", func(t *testing.T) {
		err := Submission{Name: "  ", Image: []byte{0xff}}.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Contains(t, err.Error(), "name")
	})

	t.Run("missing image", func(t *testing.T) {
		err := Submission{Name: "Kim"}.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Contains(t, err.Error(), "image")
	})
}

func TestNewObservationRecord_DatesTodayInLocation(t *testing.T) {
	// 2024-04-26 23:30 UTC is already 2024-04-27 in Seoul.
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 23, 30, 0, 0, time.UTC))
	SetClock(fakeClock)
	t.Cleanup(func() { SetClock(nil) })

	seoul := time.FixedZone("KST", 9*60*60)
	rec := NewObservationRecord(Submission{Name: " Kim ", Memo: "clear sky"}, seoul)

	assert.Equal(t, "Kim", rec.Name)
	assert.Equal(t, "clear sky", rec.Memo)
	assert.Equal(t, "2024-04-27", rec.DateString())
	assert.NotEmpty(t, rec.ID)
	assert.Nil(t, rec.SunspotCount)

	utc := NewObservationRecord(Submission{Name: "Kim"}, time.UTC)
	assert.Equal(t, "2024-04-26", utc.DateString())
	assert.NotEqual(t, rec.ID, utc.ID)
}

func TestObservationRecord_Label(t *testing.T) {
	rec := ObservationRecord{}
	assert.Equal(t, "✅ 기록 저장 완료", rec.Label())

	count := 7
	rec.SunspotCount = &count
	assert.Equal(t, "✅ 흑점 7개 탐지됨 | 기록 저장 완료", rec.Label())
}

func TestNewObservationArchived(t *testing.T) {
	at := time.Date(2024, time.April, 26, 6, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { SetClock(nil) })

	rec := ObservationRecord{ID: "obs-1", Name: "Kim"}
	evt := NewObservationArchived(rec, Archived{
		PageID: "page-1",
		URL:    PublicURL("page-1"),
		Slots:  SlotOutcome{OriginalAttached: true},
	})

	assert.Equal(t, "obs-1", evt.Observation.ID)
	assert.Equal(t, "page-1", evt.PageID)
	assert.Equal(t, "https://www.notion.so/page1", evt.PageURL)
	assert.True(t, evt.Slots.OriginalAttached)
	assert.False(t, evt.Slots.ResultAttached)
	assert.Equal(t, at, evt.ArchivedAt)
}
