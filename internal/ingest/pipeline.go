// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

// Package ingest consolidates heterogeneous tabular sources into one
// deduplicated catalog.
//
// Each source is read with a bounded head, its columns are mapped onto the
// catalog fields, and derived fields (genre, description, year, dedupe key)
// are computed per media type. Sources are then concatenated in order and
// duplicates dropped according to the merge policy. A source that cannot be
// read is skipped; the run continues with the rest.
package ingest

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vibecatalog/internal/catalog"
	"github.com/tomtom215/vibecatalog/internal/config"
	"github.com/tomtom215/vibecatalog/internal/models"
)

// DefaultRowLimit caps rows per source when neither the source nor the
// pipeline sets a limit.
const DefaultRowLimit = 5000

// Source is one tabular feed. Columns maps target fields (see the Field
// constants) to the file's column names.
type Source struct {
	Name      string
	Path      string
	MediaType models.MediaType
	Columns   map[string]string
	Limit     int
}

// SourcesFromConfig converts configured sources.
func SourcesFromConfig(cfgs []config.SourceConfig) []Source {
	out := make([]Source, 0, len(cfgs))
	for _, c := range cfgs {
		name := c.Name
		if name == "" {
			name = c.Path
		}
		out = append(out, Source{
			Name:      name,
			Path:      c.Path,
			MediaType: models.MediaType(c.MediaType),
			Columns:   c.Columns,
			Limit:     c.Limit,
		})
	}
	return out
}

// SourceStats reports what happened to one source.
type SourceStats struct {
	Name    string `json:"name"`
	Read    int    `json:"read"`
	Skipped bool   `json:"skipped"`
	Error   string `json:"error,omitempty"`
}

// Stats summarizes a consolidation run.
type Stats struct {
	Sources           []SourceStats `json:"sources"`
	DuplicatesDropped int           `json:"duplicatesDropped"`
	EmptyTitleDropped int           `json:"emptyTitleDropped"`
	Records           int           `json:"records"`
}

// Pipeline consolidates sources into a catalog.
type Pipeline struct {
	reader   RowReader
	policy   MergePolicy
	rowLimit int
	logger   zerolog.Logger
}

// NewPipeline creates a pipeline. rowLimit <= 0 selects DefaultRowLimit.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPipeline(reader RowReader, policy MergePolicy, rowLimit int, logger zerolog.Logger) *Pipeline {
	if rowLimit <= 0 {
		rowLimit = DefaultRowLimit
	}
	if policy == "" {
		policy = MergeFirstSeen
	}
	return &Pipeline{
		reader:   reader,
		policy:   policy,
		rowLimit: rowLimit,
		logger:   logger.With().Str("component", "ingest").Logger(),
	}
}

// Consolidate reads every source in order and returns the merged catalog.
// It only fails when ctx is cancelled; unreadable sources are skipped.
func (p *Pipeline) Consolidate(ctx context.Context, sources []Source) (*catalog.Store, Stats, error) {
	var (
		stats    Stats
		combined []models.CatalogRecord
	)

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		limit := src.Limit
		if limit <= 0 {
			limit = p.rowLimit
		}

		rows, err := p.reader.ReadRows(ctx, src.Path, limit)
		if err != nil {
			if ctx.Err() != nil {
				return nil, stats, ctx.Err()
			}
			p.logger.Warn().Err(err).Str("source", src.Name).Str("path", src.Path).Msg("Skipping unreadable source")
			stats.Sources = append(stats.Sources, SourceStats{Name: src.Name, Skipped: true, Error: err.Error()})
			continue
		}

		for _, row := range rows {
			combined = append(combined, normalizeRow(row, src))
		}
		stats.Sources = append(stats.Sources, SourceStats{Name: src.Name, Read: len(rows)})
		p.logger.Debug().Str("source", src.Name).Int("rows", len(rows)).Msg("Source read")
	}

	merged, dropped := merge(combined, p.policy)
	stats.DuplicatesDropped = dropped

	records := merged[:0]
	for i := range merged {
		if merged[i].Title == "" {
			stats.EmptyTitleDropped++
			continue
		}
		records = append(records, merged[i])
	}
	stats.Records = len(records)

	p.logger.Info().
		Int("records", stats.Records).
		Int("duplicates_dropped", stats.DuplicatesDropped).
		Int("empty_titles_dropped", stats.EmptyTitleDropped).
		Str("merge_policy", string(p.policy)).
		Msg("Catalog consolidated")

	return catalog.NewStore(records), stats, nil
}

// normalizeRow maps a source row onto a catalog record and derives the
// media-type specific fields.
func normalizeRow(row Row, src Source) models.CatalogRecord {
	field := func(target string) string {
		col, ok := src.Columns[target]
		if !ok {
			return ""
		}
		v := strings.TrimSpace(row[col])
		if isBlank(v) {
			return ""
		}
		return v
	}

	rec := models.CatalogRecord{
		Title:      field(FieldTitle),
		Genre:      ParseGenres(field(FieldGenre)),
		MediaType:  src.MediaType,
		Popularity: ParsePopularity(field(FieldPopularity)),
		ImageURL:   urlOrEmpty(field(FieldImageURL)),
		TrailerURL: urlOrEmpty(field(FieldTrailerURL)),
		PreviewURL: urlOrEmpty(field(FieldPreviewURL)),
	}

	switch src.MediaType {
	case models.MediaTypeMusic:
		rec.YearOrArtist = normalizeArtist(field(FieldArtist))
		rec.Description = field(FieldDescription)
		if rec.Description == "" {
			rec.Description = MusicDescription(rec.Genre, rec.YearOrArtist,
				parseNonNegative(field(FieldDanceability)), parseNonNegative(field(FieldEnergy)))
		}
	default:
		date := field(FieldReleaseDate)
		if date == "" {
			date = field(FieldYear)
		}
		rec.YearOrArtist = ExtractYear(date)
		rec.Description = MovieDescription(field(FieldDescription))
	}

	rec.DedupeKey = DedupeKey(rec.Title, rec.YearOrArtist)
	rec.ID = RecordID(rec.DedupeKey)
	return rec
}
