// Package archive turns an observation record into a populated archive page.
package archive

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
	"github.com/couchcryptid/sunspot-archive-service/internal/observability"
	"github.com/couchcryptid/sunspot-archive-service/internal/slot"
)

// Archiver creates one page per observation and fills its image slots.
type Archiver struct {
	store           domain.DocumentStore
	slots           *slot.Populator
	databaseID      string
	schema          Schema
	weatherFallback string
	logger          *slog.Logger
	metrics         *observability.Metrics
}

// New creates an Archiver writing to databaseID.
func New(store domain.DocumentStore, databaseID string, schema Schema, weatherFallback string, logger *slog.Logger, metrics *observability.Metrics) *Archiver {
	return &Archiver{
		store:           store,
		slots:           slot.New(store),
		databaseID:      databaseID,
		schema:          schema,
		weatherFallback: weatherFallback,
		logger:          logger,
		metrics:         metrics,
	}
}

// Archive creates the page, then attaches each non-empty image URL under its
// slot heading. Every call creates a new page. Once the page exists, any
// failure is returned as a *domain.ArchiveError carrying what was done so far;
// nothing is rolled back.
func (a *Archiver) Archive(ctx context.Context, rec domain.ObservationRecord, originalURL, resultURL string) (domain.Archived, error) {
	pageID, err := a.store.CreatePage(ctx, a.databaseID, a.schema.PropertyValues(rec, a.weatherFallback), a.schema.SeedBlocks())
	if err != nil {
		return domain.Archived{}, fmt.Errorf("create page: %w", err)
	}

	archived := domain.Archived{PageID: pageID, URL: domain.PublicURL(pageID)}
	a.logger.Info("archive page created", "observation_id", rec.ID, "page_id", pageID)

	attached, err := a.fill(ctx, pageID, "original", a.schema.Slots.Original, originalURL)
	archived.Slots.OriginalAttached = attached
	if err != nil {
		return archived, &domain.ArchiveError{Archived: archived, Err: err}
	}

	attached, err = a.fill(ctx, pageID, "result", a.schema.Slots.Result, resultURL)
	archived.Slots.ResultAttached = attached
	if err != nil {
		return archived, &domain.ArchiveError{Archived: archived, Err: err}
	}

	return archived, nil
}

func (a *Archiver) fill(ctx context.Context, pageID, slotName, keyword, imageURL string) (bool, error) {
	if imageURL == "" {
		return false, nil
	}

	blockID, found, err := a.slots.FindHeadingBlock(ctx, pageID, keyword)
	if err != nil {
		return false, fmt.Errorf("locate %s slot: %w", slotName, err)
	}
	if !found {
		a.recordLookup(slotName, "missing")
		a.logger.Warn("template slot not found, image not attached",
			"page_id", pageID,
			"slot", slotName,
			"keyword", keyword,
		)
		return false, nil
	}
	a.recordLookup(slotName, "found")

	if err := a.slots.AttachImage(ctx, blockID, imageURL); err != nil {
		return false, fmt.Errorf("fill %s slot: %w", slotName, err)
	}
	return true, nil
}

func (a *Archiver) recordLookup(slotName, result string) {
	if a.metrics != nil {
		a.metrics.SlotLookups.WithLabelValues(slotName, result).Inc()
	}
}
