// Command clim2parquet converts GADM-named climate CSV files into one Parquet
// file per data source and admin level, stamping every row with the surrogate
// ID of its administrative unit.
//
// Usage:
//
//	clim2parquet sources
//	clim2parquet ids -dir data/csv -out data/admin_units.parquet
//	clim2parquet convert -from data/csv -to data/parquet -source CHIRPS,ERA5_mean -level 0,1,2
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/clim2parquet/internal/adapter/csvfile"
	"github.com/couchcryptid/clim2parquet/internal/adapter/extractcache"
	"github.com/couchcryptid/clim2parquet/internal/adapter/fsscan"
	"github.com/couchcryptid/clim2parquet/internal/adapter/parquet"
	"github.com/couchcryptid/clim2parquet/internal/config"
	"github.com/couchcryptid/clim2parquet/internal/domain"
	"github.com/couchcryptid/clim2parquet/internal/observability"
	"github.com/couchcryptid/clim2parquet/internal/pipeline"
)

const usage = `usage: clim2parquet <command> [flags]

commands:
  sources   list the supported data sources
  ids       build the admin unit reference table and save it
  convert   convert climate CSV files to Parquet
`

func main() {
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		slog.Error("clim2parquet failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	app, err := newApp(cfg, logger, metrics)
	if err != nil {
		return err
	}

	switch args[0] {
	case "sources":
		for _, name := range domain.DataNames() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	case "ids":
		err = app.ids(ctx, args[1:])
	case "convert":
		err = app.convert(ctx, args[1:])
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}

	if mErr := observability.WriteTextfile(cfg.MetricsFile); mErr != nil {
		logger.Error("metrics export failed", "error", mErr)
	}
	return err
}

// app wires the adapters into the pipeline stages.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *observability.Metrics
	finder    *fsscan.Finder
	extractor domain.Extractor
	builder   *pipeline.ReferenceBuilder
}

func newApp(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*app, error) {
	finder := fsscan.NewFinder(logger)
	extractor, err := extractcache.New(domain.NewFilenameExtractor(cfg.ValidateCountryCodes), cfg.ExtractCacheSize, metrics)
	if err != nil {
		return nil, err
	}
	logger.Debug("extractor configured",
		"validate_country_codes", cfg.ValidateCountryCodes,
		"cache_size", cfg.ExtractCacheSize,
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		finder:    finder,
		extractor: extractor,
		builder:   pipeline.NewReferenceBuilder(finder, extractor, logger, metrics),
	}, nil
}

func (a *app) ids(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ids", flag.ContinueOnError)
	dir := fs.String("dir", "", "directory of climate CSV files")
	out := fs.String("out", a.cfg.ReferenceTable, "reference table output path (default $REFERENCE_TABLE)")
	version := fs.String("version", a.cfg.GADMVersion, versionUsage)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" || *out == "" {
		fs.Usage()
		return errors.New("ids: -dir and -out are required")
	}

	table, err := a.builder.BuildAll(ctx, *dir, *version)
	if err != nil {
		return err
	}
	if err := parquet.NewReferenceStore(*out).Save(table); err != nil {
		return err
	}
	a.logger.Info("saved reference table", "path", *out, "entries", table.Len())
	return nil
}

func (a *app) convert(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	from := fs.String("from", "", "directory of climate CSV files")
	to := fs.String("to", "", "directory for Parquet outputs")
	sources := fs.String("source", "", "comma-separated data sources (see: clim2parquet sources)")
	levels := fs.String("level", "0", "comma-separated admin levels 0-3")
	version := fs.String("version", a.cfg.GADMVersion, versionUsage)
	if err := fs.Parse(args); err != nil {
		return err
	}

	lv, err := parseLevels(*levels)
	if err != nil {
		return err
	}
	req := pipeline.Request{
		Sources: splitList(*sources),
		Levels:  lv,
		Version: *version,
		DirFrom: *from,
		DirTo:   *to,
	}

	// A nil interface, not a nil *ReferenceStore, means rebuild every run.
	var store pipeline.ReferenceStore
	if a.cfg.ReferenceTable != "" {
		store = parquet.NewReferenceStore(a.cfg.ReferenceTable)
	}

	converter := pipeline.NewConverter(
		a.finder,
		pipeline.NewFileAnnotator(csvfile.NewReader(), a.extractor),
		parquet.NewWriter(),
		pipeline.NewReferenceProvider(a.builder, store, a.logger, a.metrics),
		a.logger,
		a.metrics,
	)
	_, err = converter.Convert(ctx, req)
	return err
}
