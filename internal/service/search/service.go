package search

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"kakao-store-bot/embedder"
	"kakao-store-bot/index"
	"kakao-store-bot/internal/geo"
	"kakao-store-bot/internal/store"
)

// Service ranks stores against a query. Provider failures degrade to an
// empty result set; the caller decides how to phrase "nothing found".
type Service struct {
	embedder   embedder.Embedder
	index      index.Index
	logger     *zap.Logger
	vectorSize int
	scanWindow int
}

// ByText embeds the query and returns the topK nearest stores in the
// index's order (descending similarity; not re-sorted here).
func (s *Service) ByText(ctx context.Context, query string, topK int) []store.Record {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Warn("query embedding failed", zap.String("query", query), zap.Error(err))
		return []store.Record{}
	}

	matches, err := s.index.Query(ctx, vector, topK)
	if err != nil {
		s.logger.Warn("index query failed", zap.String("query", query), zap.Error(err))
		return []store.Record{}
	}

	records := make([]store.Record, 0, len(matches))
	for _, m := range matches {
		rec := store.FromMetadata(m.Metadata)
		if rec.ID == "" {
			rec.ID = m.ID
		}
		rec.Score = m.Score
		records = append(records, rec)
	}

	return records
}

// ByLocation filters stores to radiusKm around (lat, lon), nearest first.
// The index has no geospatial predicate, so this scans a capped candidate
// window (scanWindow records fetched with a neutral vector) and filters
// client-side. Accuracy degrades once the true candidate count within the
// radius exceeds the window.
func (s *Service) ByLocation(ctx context.Context, lat, lon, radiusKm float64, topK int) []store.Record {
	neutral := make([]float32, s.vectorSize)

	matches, err := s.index.Query(ctx, neutral, s.scanWindow)
	if err != nil {
		s.logger.Warn("index scan failed", zap.Error(err))
		return []store.Record{}
	}

	records := make([]store.Record, 0, len(matches))
	for _, m := range matches {
		rec := store.FromMetadata(m.Metadata)
		if rec.ID == "" {
			rec.ID = m.ID
		}
		if !rec.HasCoordinates() {
			continue
		}

		d := geo.Distance(lat, lon, *rec.Lat, *rec.Lon)
		if d > radiusKm {
			continue
		}

		rec.DistanceKm = &d
		records = append(records, rec)
	}

	// stable: ties keep scan order
	sort.SliceStable(records, func(a, b int) bool {
		return *records[a].DistanceKm < *records[b].DistanceKm
	})

	if len(records) > topK {
		records = records[:topK]
	}

	return records
}

func New(
	embedder embedder.Embedder,
	index index.Index,
	logger *zap.Logger,
	vectorSize int,
	scanWindow int,
) *Service {
	if embedder == nil {
		panic("embedder is required")
	}

	if index == nil {
		panic("index is required")
	}

	if vectorSize <= 0 {
		vectorSize = 1536
	}

	if scanWindow <= 0 {
		scanWindow = 100
	}

	return &Service{
		embedder:   embedder,
		index:      index,
		logger:     logger,
		vectorSize: vectorSize,
		scanWindow: scanWindow,
	}
}
