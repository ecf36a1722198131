package viewer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/core/series"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse"
)

// viewerHandler handles the /api/sources subtree.
type viewerHandler struct {
	svc *Service
}

// ────────────────────────────────────────────────────────────────────────────
// GET /api/sources
// ────────────────────────────────────────────────────────────────────────────

func (h *viewerHandler) Sources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"sources": h.svc.Sources()})
}

// ────────────────────────────────────────────────────────────────────────────
// GET /api/sources/{source}/tables
// ────────────────────────────────────────────────────────────────────────────

func (h *viewerHandler) Tables(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")

	tables, err := h.svc.Tables(r.Context(), source)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tables": tables})
}

// ────────────────────────────────────────────────────────────────────────────
// GET /api/sources/{source}/tables/{table}/columns
// ────────────────────────────────────────────────────────────────────────────

func (h *viewerHandler) Columns(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	table := chi.URLParam(r, "table")

	cols, err := h.svc.Columns(r.Context(), source, table)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"columns": cols})
}

// ────────────────────────────────────────────────────────────────────────────
// POST /api/sources/{source}/series
// ────────────────────────────────────────────────────────────────────────────

type seriesRequest struct {
	Table      string   `json:"table"`
	Columns    []string `json:"columns"`
	TimeColumn string   `json:"time_column"` // default BLOCK_DATE
	Start      string   `json:"start"`       // RFC3339 or YYYY-MM-DD
	End        string   `json:"end"`         // RFC3339 or YYYY-MM-DD (whole day)
}

type seriesResponse struct {
	Source        string          `json:"source"`
	Table         string          `json:"table"`
	IntervalLabel string          `json:"interval_label"` // "H"/"D"/"2D"/"5D"/"M"
	series.BucketedSeries
}

func (h *viewerHandler) Series(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")

	var req seriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Table == "" || len(req.Columns) == 0 {
		writeError(w, http.StatusBadRequest, "table and columns are required")
		return
	}

	rng, err := parseRange(req.Start, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Series(r.Context(), source, warehouse.FetchSpec{
		Table:      req.Table,
		Columns:    req.Columns,
		TimeColumn: req.TimeColumn,
		Range:      rng,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, seriesResponse{
		Source:         source,
		Table:          req.Table,
		IntervalLabel:  result.Granularity.Label(),
		BucketedSeries: result,
	})
}

// parseRange parses start/end as RFC3339 timestamps or bare dates.
// A bare end date means the whole day: it is widened to 23:59:59 so a
// single-day request buckets hourly across that day.
func parseRange(start, end string) (series.TimeRange, error) {
	s, _, err := parseInstant(start)
	if err != nil {
		return series.TimeRange{}, fmt.Errorf("start: %w", err)
	}
	e, dateOnly, err := parseInstant(end)
	if err != nil {
		return series.TimeRange{}, fmt.Errorf("end: %w", err)
	}
	if dateOnly {
		e = e.Add(24*time.Hour - time.Second)
	}
	return series.NewTimeRange(s, e)
}

func parseInstant(s string) (time.Time, bool, error) {
	if s == "" {
		return time.Time{}, false, fmt.Errorf("missing timestamp")
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, fmt.Errorf("unrecognized timestamp %q (want RFC3339 or YYYY-MM-DD)", s)
}

// writeServiceError maps pipeline errors onto HTTP statuses:
// bad ranges are the caller's fault, unknown sources are 404, and
// warehouse failures surface unchanged as 502 — never retried, never
// masked.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, series.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnknownSource):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}
