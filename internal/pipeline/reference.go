package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/clim2parquet/internal/domain"
	"github.com/couchcryptid/clim2parquet/internal/observability"
)

// ReferenceStore persists a reference table between runs.
type ReferenceStore interface {
	Path() string
	Exists() bool
	Load() (*domain.ReferenceTable, error)
	Save(table *domain.ReferenceTable) error
}

// ReferenceBuilder derives the reference table from the file names in a
// directory.
type ReferenceBuilder struct {
	finder    FileFinder
	extractor domain.Extractor
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewReferenceBuilder creates a ReferenceBuilder.
func NewReferenceBuilder(finder FileFinder, extractor domain.Extractor, logger *slog.Logger, metrics *observability.Metrics) *ReferenceBuilder {
	return &ReferenceBuilder{
		finder:    finder,
		extractor: extractor,
		logger:    logger,
		metrics:   metrics,
	}
}

// Build extracts the admin code of every file matching each (source, level)
// pair and ranks the distinct codes. Pairs without files contribute nothing.
// A file whose name does not parse is logged and left out; only a missing
// directory or invalid parameter fails the build.
func (b *ReferenceBuilder) Build(ctx context.Context, dir string, sources []domain.DataSource, levels []int, version string) (*domain.ReferenceTable, error) {
	if err := domain.ValidateVersion(version); err != nil {
		return nil, err
	}
	for _, level := range levels {
		if err := domain.ValidateLevel(level); err != nil {
			return nil, err
		}
	}
	if err := b.finder.RequireDir(dir, "data source"); err != nil {
		return nil, err
	}

	var (
		codes   []domain.AdminCode
		skipped int
	)
	for _, src := range sources {
		for _, level := range levels {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			paths, err := b.finder.Find(dir, src, level, version)
			if err != nil {
				return nil, err
			}
			for _, path := range paths {
				code, err := b.extractor.Extract(path, level, version)
				if err != nil {
					b.logger.Warn("excluding file from reference table", "file", path, "error", err)
					b.metrics.ReferenceParseErrors.Inc()
					skipped++
					continue
				}
				codes = append(codes, code)
			}
		}
	}

	table := domain.NewReferenceTable(codes)
	b.metrics.ReferenceEntries.Set(float64(table.Len()))
	b.logger.Info("built reference table",
		"dir", dir,
		"files", len(codes),
		"excluded", skipped,
		"entries", table.Len(),
	)
	return table, nil
}

// BuildAll builds across every catalog data source and admin level.
func (b *ReferenceBuilder) BuildAll(ctx context.Context, dir, version string) (*domain.ReferenceTable, error) {
	return b.Build(ctx, dir, domain.DataSources(), domain.GADMLevels(), version)
}

// ReferenceProvider obtains the reference table for a run: loaded from the
// store when present, otherwise built and, with a store, persisted.
type ReferenceProvider struct {
	builder *ReferenceBuilder
	store   ReferenceStore
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewReferenceProvider creates a ReferenceProvider. store may be nil, in
// which case the table is rebuilt on every call.
func NewReferenceProvider(builder *ReferenceBuilder, store ReferenceStore, logger *slog.Logger, metrics *observability.Metrics) *ReferenceProvider {
	return &ReferenceProvider{
		builder: builder,
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// Get returns the reference table for the files in dir.
func (p *ReferenceProvider) Get(ctx context.Context, dir, version string) (*domain.ReferenceTable, error) {
	if p.store != nil && p.store.Exists() {
		table, err := p.store.Load()
		if err != nil {
			return nil, err
		}
		p.metrics.ReferenceEntries.Set(float64(table.Len()))
		p.logger.Info("loaded reference table",
			"path", p.store.Path(),
			"entries", table.Len(),
			"generated_at", table.GeneratedAt(),
		)
		return table, nil
	}

	table, err := p.builder.BuildAll(ctx, dir, version)
	if err != nil {
		return nil, err
	}
	if p.store != nil {
		if err := p.store.Save(table); err != nil {
			return nil, err
		}
		p.logger.Info("saved reference table", "path", p.store.Path(), "entries", table.Len())
	}
	return table, nil
}
