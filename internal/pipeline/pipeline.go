package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/couchcryptid/clim2parquet/internal/adapter/manifest"
	"github.com/couchcryptid/clim2parquet/internal/domain"
	"github.com/couchcryptid/clim2parquet/internal/observability"
)

// FileFinder lists the climate files of one data source at one admin level.
type FileFinder interface {
	RequireDir(path, role string) error
	Find(dir string, src domain.DataSource, level int, version string) ([]string, error)
}

// DatasetReader loads one climate CSV.
type DatasetReader interface {
	Read(path string) (*domain.Dataset, error)
}

// DatasetWriter serializes annotated datasets into one output file and
// returns the number of rows written.
type DatasetWriter interface {
	Write(path string, sets []*domain.Dataset) (int64, error)
}

// Request selects what Convert processes.
type Request struct {
	Sources []string
	Levels  []int
	Version string
	DirFrom string
	DirTo   string
}

// Converter turns directories of GADM-named climate CSVs into one Parquet
// file per (data source, admin level) pair.
type Converter struct {
	finder     FileFinder
	annotator  *FileAnnotator
	writer     DatasetWriter
	references *ReferenceProvider
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewConverter creates a Converter with the given stages and observability.
func NewConverter(finder FileFinder, annotator *FileAnnotator, writer DatasetWriter, references *ReferenceProvider, logger *slog.Logger, metrics *observability.Metrics) *Converter {
	return &Converter{
		finder:     finder,
		annotator:  annotator,
		writer:     writer,
		references: references,
		logger:     logger,
		metrics:    metrics,
	}
}

// Convert validates req, obtains the reference table and converts every
// requested pair. Pairs without files are skipped with a warning. Per-file
// failures do not stop the run; they are returned joined after the manifest
// is written, and the affected pair produces no output.
func (c *Converter) Convert(ctx context.Context, req Request) (*manifest.Manifest, error) {
	start := time.Now()

	sources, levels, version, err := validate(req)
	if err != nil {
		return nil, err
	}
	if err := c.finder.RequireDir(req.DirFrom, "data source"); err != nil {
		return nil, err
	}
	if err := c.finder.RequireDir(req.DirTo, "output"); err != nil {
		return nil, err
	}

	ref, err := c.references.Get(ctx, req.DirFrom, version)
	if err != nil {
		return nil, err
	}

	result := &manifest.Manifest{
		GADMVersion:      version,
		ReferenceEntries: ref.Len(),
	}

	var errs []error
	for _, src := range sources {
		for _, level := range levels {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out, err := c.convertPair(ctx, src, level, version, req, ref)
			switch {
			case errors.Is(err, domain.ErrNoFilesFound):
				result.Skipped = append(result.Skipped, manifest.Skipped{Source: src.Name, Level: level, Reason: err.Error()})
			case err != nil:
				result.Skipped = append(result.Skipped, manifest.Skipped{Source: src.Name, Level: level, Reason: "conversion failed"})
				errs = append(errs, err)
			default:
				result.Outputs = append(result.Outputs, out)
			}
		}
	}

	result.GeneratedAt = domain.Now()
	if err := manifest.Write(req.DirTo, result); err != nil {
		return nil, err
	}

	c.metrics.ConversionDuration.Observe(time.Since(start).Seconds())
	c.logger.Info("conversion finished",
		"outputs", len(result.Outputs),
		"skipped", len(result.Skipped),
		"duration", time.Since(start),
	)
	return result, errors.Join(errs...)
}

// convertPair returns an error wrapping ErrNoFilesFound when nothing matched.
func (c *Converter) convertPair(ctx context.Context, src domain.DataSource, level int, version string, req Request, ref *domain.ReferenceTable) (manifest.Output, error) {
	paths, err := c.finder.Find(req.DirFrom, src, level, version)
	if err != nil {
		return manifest.Output{}, err
	}
	if len(paths) == 0 {
		c.logger.Warn("no files found",
			"data_source", src.Name,
			"admin_level", level,
			"dir", req.DirFrom,
		)
		c.metrics.NoFilesFound.Inc()
		return manifest.Output{}, fmt.Errorf("%w for %s at admin level %d", domain.ErrNoFilesFound, src.Name, level)
	}
	c.metrics.FilesFound.WithLabelValues(src.Name, strconv.Itoa(level)).Add(float64(len(paths)))

	sets := make([]*domain.Dataset, 0, len(paths))
	var errs []error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return manifest.Output{}, err
		}
		ds, err := c.annotator.Annotate(path, level, version, ref)
		if err != nil {
			c.recordFileError(err)
			errs = append(errs, err)
			continue
		}
		sets = append(sets, ds)
	}
	if len(errs) > 0 {
		c.logger.Error("skipping output, files failed",
			"data_source", src.Name,
			"admin_level", level,
			"failed", len(errs),
			"files", len(paths),
		)
		return manifest.Output{}, fmt.Errorf("%s admin level %d: %w", src.Name, level, errors.Join(errs...))
	}

	name := domain.OutputName(src, level)
	rows, err := c.writer.Write(filepath.Join(req.DirTo, name), sets)
	if err != nil {
		c.metrics.FileErrors.WithLabelValues(stageWrite).Inc()
		return manifest.Output{}, &StageError{Stage: stageWrite, Path: name, Err: err}
	}

	c.metrics.FilesConverted.Add(float64(len(sets)))
	c.metrics.RowsWritten.Add(float64(rows))
	c.metrics.OutputsWritten.Inc()
	c.logger.Info("wrote parquet output",
		"file", name,
		"data_source", src.Name,
		"admin_level", level,
		"files", len(sets),
		"rows", rows,
	)
	return manifest.Output{File: name, Source: src.Name, Level: level, Files: len(sets), Rows: rows}, nil
}

func (c *Converter) recordFileError(err error) {
	var se *StageError
	if errors.As(err, &se) {
		c.metrics.FileErrors.WithLabelValues(se.Stage).Inc()
	}
	c.logger.Warn("file failed", "error", err)
}

// validate checks every parameter before any I/O. No levels means country
// level only; an empty version means the default convention.
func validate(req Request) ([]domain.DataSource, []int, string, error) {
	if len(req.Sources) == 0 {
		return nil, nil, "", fmt.Errorf("%w: no data source given, choose from %v", domain.ErrInvalidParameter, domain.DataNames())
	}
	sources := make([]domain.DataSource, 0, len(req.Sources))
	for _, name := range req.Sources {
		if slices.ContainsFunc(sources, func(s domain.DataSource) bool { return s.Name == name }) {
			continue
		}
		src, err := domain.LookupSource(name)
		if err != nil {
			return nil, nil, "", err
		}
		sources = append(sources, src)
	}

	levels := make([]int, 0, len(req.Levels))
	for _, level := range req.Levels {
		if err := domain.ValidateLevel(level); err != nil {
			return nil, nil, "", err
		}
		if !slices.Contains(levels, level) {
			levels = append(levels, level)
		}
	}
	if len(levels) == 0 {
		levels = []int{0}
	}

	version := req.Version
	if version == "" {
		version = domain.GADMVersion410
	}
	if err := domain.ValidateVersion(version); err != nil {
		return nil, nil, "", err
	}
	return sources, levels, version, nil
}
