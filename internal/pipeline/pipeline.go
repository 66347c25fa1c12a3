package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
	"github.com/couchcryptid/sunspot-archive-service/internal/observability"
	"golang.org/x/sync/errgroup"
)

// Archiver stores an observation record and its images in the document database.
type Archiver interface {
	Archive(ctx context.Context, rec domain.ObservationRecord, originalURL, resultURL string) (domain.Archived, error)
}

// EventPublisher announces archived observations to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.ObservationArchived) error
}

// Ledger keeps the local record of every submission outcome.
type Ledger interface {
	Record(ctx context.Context, entry domain.LedgerEntry) error
}

// ErrDetectionDisabled is returned by Detect when no detector is configured.
var ErrDetectionDisabled = errors.New("detection is disabled")

// Check is a named dependency probe used for readiness.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Stages are the collaborators a Pipeline drives. Detector, Locator,
// Publisher and Ledger are optional.
type Stages struct {
	Detector  domain.Detector
	Images    domain.ImageStore
	Weather   domain.WeatherProvider
	Locator   domain.IPLocator
	Archiver  Archiver
	Publisher EventPublisher
	Ledger    Ledger
}

// Settings are the pipeline's non-collaborator options.
type Settings struct {
	Location    *time.Location
	DefaultCity string
}

// Result is what an observer gets back from a submission.
type Result struct {
	Observation domain.ObservationRecord
	Archived    domain.Archived
	Label       string
	// Annotated is the detection rendering, or the original photo when
	// detection is disabled.
	Annotated []byte
}

// Pipeline orchestrates detect, enrich, upload and archive for one submission.
type Pipeline struct {
	stages   Stages
	settings Settings
	checks   []Check
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Pipeline with the given stages and observability.
func New(stages Stages, settings Settings, logger *slog.Logger, metrics *observability.Metrics, checks ...Check) *Pipeline {
	if metrics != nil {
		enabled := 0.0
		if stages.Detector != nil {
			enabled = 1
		}
		metrics.DetectorEnabled.Set(enabled)
	}
	return &Pipeline{
		stages:   stages,
		settings: settings,
		checks:   checks,
		logger:   logger,
		metrics:  metrics,
	}
}

// DetectionEnabled reports whether submissions run the sunspot model.
func (p *Pipeline) DetectionEnabled() bool {
	return p.stages.Detector != nil
}

// CheckReadiness returns nil when every registered dependency answers, or an
// error naming the first one that does not.
func (p *Pipeline) CheckReadiness(ctx context.Context) error {
	for _, c := range p.checks {
		if err := c.Ping(ctx); err != nil {
			return fmt.Errorf("%s not ready: %w", c.Name, err)
		}
	}
	return nil
}

// Detect runs the model on image without archiving anything.
func (p *Pipeline) Detect(ctx context.Context, image []byte) (domain.Detection, error) {
	if p.stages.Detector == nil {
		return domain.Detection{}, ErrDetectionDisabled
	}
	if len(image) == 0 {
		return domain.Detection{}, fmt.Errorf("%w: image is required", domain.ErrValidation)
	}
	det, err := p.stages.Detector.Detect(ctx, image)
	if err != nil {
		return domain.Detection{}, fmt.Errorf("detect: %w", err)
	}
	p.observeCount(det.Count())
	return det, nil
}

// Submit runs the full flow for one submission. Weather and location
// failures degrade; anything else aborts. When the archive page was created
// before a failure the returned Result still carries it.
func (p *Pipeline) Submit(ctx context.Context, sub domain.Submission) (Result, error) {
	start := time.Now()
	p.inc(func(m *observability.Metrics) { m.SubmissionsReceived.Inc() })

	if err := sub.Validate(); err != nil {
		p.fail("validate")
		return Result{}, err
	}

	rec := domain.NewObservationRecord(sub, p.settings.Location)
	log := p.logger.With("observation_id", rec.ID)

	annotated := sub.Image
	if p.stages.Detector != nil {
		det, err := p.stages.Detector.Detect(ctx, sub.Image)
		if err != nil {
			return p.abort(ctx, rec, domain.Archived{}, "detect", fmt.Errorf("detect: %w", err))
		}
		count := det.Count()
		rec.SunspotCount = &count
		annotated = det.Rendered
		p.observeCount(count)
	}

	rec.Location, rec.LocationFrom = p.resolveLocation(ctx, sub.City, log)
	rec.Weather = p.lookupWeather(ctx, rec.Location, log)

	origURL, resultURL, err := p.upload(ctx, sub.Image, annotated, rec.SunspotCount != nil)
	if err != nil {
		return p.abort(ctx, rec, domain.Archived{}, "upload", err)
	}
	rec.OriginalURL, rec.ResultURL = origURL, resultURL

	archived, err := p.stages.Archiver.Archive(ctx, rec, origURL, resultURL)
	if err != nil {
		res, err := p.abort(ctx, rec, archived, "archive", fmt.Errorf("archive: %w", err))
		res.Annotated = annotated
		return res, err
	}

	p.record(ctx, domain.NewLedgerEntry(rec, archived, nil), log)
	p.publish(ctx, domain.NewObservationArchived(rec, archived), log)

	p.inc(func(m *observability.Metrics) {
		m.SubmissionsArchived.Inc()
		m.SubmissionDuration.Observe(time.Since(start).Seconds())
	})
	log.Info("observation archived",
		"page_id", archived.PageID,
		"location", rec.Location,
		"location_source", rec.LocationFrom,
		"weather_available", rec.Weather.Available,
	)

	return Result{
		Observation: rec,
		Archived:    archived,
		Label:       rec.Label(),
		Annotated:   annotated,
	}, nil
}

// upload hosts the original and, when detection ran, the annotated image.
// The two uploads are independent and run concurrently.
func (p *Pipeline) upload(ctx context.Context, original, annotated []byte, withResult bool) (string, string, error) {
	var origURL, resultURL string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := p.stages.Images.Upload(gctx, original)
		if err != nil {
			return fmt.Errorf("upload original: %w", err)
		}
		origURL = u
		return nil
	})
	if withResult {
		g.Go(func() error {
			u, err := p.stages.Images.Upload(gctx, annotated)
			if err != nil {
				return fmt.Errorf("upload result: %w", err)
			}
			resultURL = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return origURL, resultURL, nil
}

func (p *Pipeline) abort(ctx context.Context, rec domain.ObservationRecord, archived domain.Archived, stage string, err error) (Result, error) {
	p.fail(stage)
	p.logger.Error("submission failed", "observation_id", rec.ID, "stage", stage, "error", err)
	p.record(ctx, domain.NewLedgerEntry(rec, archived, err), p.logger)
	return Result{Observation: rec, Archived: archived}, err
}

func (p *Pipeline) record(ctx context.Context, entry domain.LedgerEntry, log *slog.Logger) {
	if p.stages.Ledger == nil {
		return
	}
	if err := p.stages.Ledger.Record(context.WithoutCancel(ctx), entry); err != nil {
		log.Warn("ledger write failed", "error", err)
	}
}

func (p *Pipeline) publish(ctx context.Context, event domain.ObservationArchived, log *slog.Logger) {
	if p.stages.Publisher == nil {
		return
	}
	if err := p.stages.Publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		log.Warn("publish event failed", "error", err)
	}
}

func (p *Pipeline) fail(stage string) {
	p.inc(func(m *observability.Metrics) { m.SubmissionErrors.WithLabelValues(stage).Inc() })
}

func (p *Pipeline) observeCount(n int) {
	p.inc(func(m *observability.Metrics) { m.SunspotsDetected.Observe(float64(n)) })
}

func (p *Pipeline) inc(f func(*observability.Metrics)) {
	if p.metrics != nil {
		f(p.metrics)
	}
}
