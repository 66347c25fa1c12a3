package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
	"github.com/couchcryptid/sunspot-archive-service/internal/pipeline"
)

const imageField = "image"

type submitResponse struct {
	ObservationID  string               `json:"observation_id"`
	Label          string               `json:"label"`
	PageID         string               `json:"page_id"`
	PageURL        string               `json:"page_url"`
	Slots          domain.SlotOutcome   `json:"slots"`
	Date           string               `json:"date"`
	Location       string               `json:"location"`
	LocationSource string               `json:"location_source"`
	Weather        domain.WeatherReport `json:"weather"`
	SunspotCount   *int                 `json:"sunspot_count,omitempty"`
	OriginalURL    string               `json:"original_url"`
	ResultURL      string               `json:"result_url,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	PageURL string `json:"page_url,omitempty"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	image, err := s.readImage(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sub := domain.Submission{
		Name:  r.FormValue("name"),
		Memo:  r.FormValue("memo"),
		City:  r.FormValue("city"),
		Image: image,
	}

	res, err := s.svc.Submit(r.Context(), sub)
	if err != nil {
		s.writeError(w, err)
		return
	}

	rec := res.Observation
	writeJSON(w, http.StatusCreated, submitResponse{
		ObservationID:  rec.ID,
		Label:          res.Label,
		PageID:         res.Archived.PageID,
		PageURL:        res.Archived.URL,
		Slots:          res.Archived.Slots,
		Date:           rec.DateString(),
		Location:       rec.Location,
		LocationSource: rec.LocationFrom,
		Weather:        rec.Weather,
		SunspotCount:   rec.SunspotCount,
		OriginalURL:    rec.OriginalURL,
		ResultURL:      rec.ResultURL,
	})
}

// handleDetect answers with the annotated JPEG and the count in a header.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	image, err := s.readImage(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	det, err := s.svc.Detect(r.Context(), image)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("X-Sunspot-Count", strconv.Itoa(det.Count()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(det.Rendered)
}

func (s *Server) readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: multipart form expected: %v", domain.ErrValidation, err)
	}

	file, _, err := r.FormFile(imageField)
	if err != nil {
		return nil, fmt.Errorf("%w: image is required", domain.ErrValidation)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}

// writeError maps pipeline errors to responses. Upstream details stay in the
// logs; clients get the page URL when a page was already created.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		tooLarge   *http.MaxBytesError
		archiveErr *domain.ArchiveError
	)
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
			Error: fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit),
		})
	case errors.Is(err, pipeline.ErrDetectionDisabled):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &archiveErr):
		s.logger.Error("archive incomplete", "page_id", archiveErr.Archived.PageID, "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:   "archive page created but not fully populated",
			PageURL: archiveErr.Archived.URL,
		})
	default:
		s.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "upstream service failure"})
	}
}
