// Package viewer implements the request pipeline of the data viewer:
// pick a source, list its tables and columns, fetch a date range and
// resample it into chart-ready buckets.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sejoroajose/Starknet-Data-Explorer/internal/infra"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/cache"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/core/resample"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/core/series"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse"
)

// ErrUnknownSource is returned when a request names a source that is
// not in the configuration.
var ErrUnknownSource = errors.New("unknown source")

// Service wires warehouse sessions, the cache and the bucketing policy
// into the three viewer operations. It holds no per-request state.
type Service struct {
	inf *infra.Infra
}

// NewService returns a Service over the given infrastructure.
func NewService(inf *infra.Infra) *Service {
	return &Service{inf: inf}
}

// Sources returns the configured source names.
func (s *Service) Sources() []string {
	return s.inf.SourceNames()
}

// Tables lists the tables of a source, via cache when possible.
func (s *Service) Tables(ctx context.Context, source string) ([]string, error) {
	sess, ok := s.inf.Source(source)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}

	if c := s.inf.Cache; c != nil {
		if tables, ok := c.Tables(ctx, source); ok {
			cacheHitsTotal.WithLabelValues("tables").Inc()
			return tables, nil
		}
		cacheMissesTotal.WithLabelValues("tables").Inc()
	}

	tables, err := sess.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables of %s: %w", source, err)
	}
	if c := s.inf.Cache; c != nil {
		if err := c.SetTables(ctx, source, tables); err != nil {
			log.Warn().Err(err).Str("source", source).Msg("table list not cached")
		}
	}
	return tables, nil
}

// Columns lists the columns of a table, via cache when possible.
func (s *Service) Columns(ctx context.Context, source, table string) ([]string, error) {
	sess, ok := s.inf.Source(source)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}

	if c := s.inf.Cache; c != nil {
		if cols, ok := c.Columns(ctx, source, table); ok {
			cacheHitsTotal.WithLabelValues("columns").Inc()
			return cols, nil
		}
		cacheMissesTotal.WithLabelValues("columns").Inc()
	}

	cols, err := sess.Columns(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("list columns of %s.%s: %w", source, table, err)
	}
	if c := s.inf.Cache; c != nil {
		if err := c.SetColumns(ctx, source, table, cols); err != nil {
			log.Warn().Err(err).Str("source", source).Msg("column list not cached")
		}
	}
	return cols, nil
}

// Series runs one fetch-and-resample request: validate the range,
// fetch the matching rows, bucket them. Rows the warehouse returned
// with broken timestamps are added to the skipped count, never fatal.
func (s *Service) Series(ctx context.Context, source string, spec warehouse.FetchSpec) (series.BucketedSeries, error) {
	sess, ok := s.inf.Source(source)
	if !ok {
		return series.BucketedSeries{}, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}
	if err := spec.Range.Validate(); err != nil {
		seriesRequestsTotal.WithLabelValues(source, "invalid").Inc()
		return series.BucketedSeries{}, err
	}

	key := cache.SeriesKey(source, spec)
	if c := s.inf.Cache; c != nil {
		if cached, ok := c.Series(ctx, key); ok {
			cacheHitsTotal.WithLabelValues("series").Inc()
			seriesRequestsTotal.WithLabelValues(source, "ok").Inc()
			return cached, nil
		}
		cacheMissesTotal.WithLabelValues("series").Inc()
	}

	start := time.Now()
	rows, skipped, err := sess.Fetch(ctx, spec)
	if err != nil {
		seriesRequestsTotal.WithLabelValues(source, "error").Inc()
		return series.BucketedSeries{}, fmt.Errorf("fetch %s.%s: %w", source, spec.Table, err)
	}

	result, err := resample.Resample(rows, spec.Range)
	if err != nil {
		seriesRequestsTotal.WithLabelValues(source, "invalid").Inc()
		return series.BucketedSeries{}, err
	}
	result.Skipped += skipped

	seriesDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	rowsFetchedTotal.WithLabelValues(source).Add(float64(len(rows)))
	rowsSkippedTotal.WithLabelValues(source).Add(float64(result.Skipped))
	seriesRequestsTotal.WithLabelValues(source, "ok").Inc()

	if result.Skipped > 0 {
		log.Warn().
			Str("source", source).
			Str("table", spec.Table).
			Int("skipped_rows", result.Skipped).
			Msg("rows dropped due to broken timestamps")
	}

	if c := s.inf.Cache; c != nil {
		if err := c.SetSeries(ctx, key, result); err != nil {
			log.Warn().Err(err).Str("source", source).Msg("series not cached")
		}
	}
	return result, nil
}
