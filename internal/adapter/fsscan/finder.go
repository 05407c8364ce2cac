package fsscan

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/couchcryptid/clim2parquet/internal/domain"
)

// Finder lists climate data files in a directory.
type Finder struct {
	logger *slog.Logger
}

// NewFinder creates a Finder.
func NewFinder(logger *slog.Logger) *Finder {
	return &Finder{logger: logger}
}

// RequireDir returns ErrDirectoryNotFound when path is missing or not a
// directory. role names the directory in the message ("data source").
func RequireDir(path, role string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s directory %s not found or is not a directory", domain.ErrDirectoryNotFound, role, path)
		}
		return fmt.Errorf("stat %s directory %s: %w", role, path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s directory %s not found or is not a directory", domain.ErrDirectoryNotFound, role, path)
	}
	return nil
}

// RequireDir is the method form of the package-level RequireDir.
func (f *Finder) RequireDir(path, role string) error {
	return RequireDir(path, role)
}

// Find returns the sorted paths of regular files (or symlinks to them) in dir (non-recursive) whose
// names match the data source at the admin level. An empty result is not an
// error; callers decide how to report it.
func (f *Finder) Find(dir string, src domain.DataSource, level int, version string) ([]string, error) {
	if err := RequireDir(dir, "data source"); err != nil {
		return nil, err
	}

	re, err := domain.FilePattern(level, version, src)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var (
		paths []string
		size  int64
	)
	for _, e := range entries {
		if !re.MatchString(e.Name()) {
			continue
		}
		info, ok, err := regularFile(dir, e)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		size += info.Size()
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	if len(paths) > 0 {
		f.logger.Info("found climate files",
			"data_source", src.Name,
			"admin_level", level,
			"count", len(paths),
			"total_size", humanize.Bytes(uint64(size)), //nolint:gosec // sizes are non-negative
		)
	}
	return paths, nil
}

// regularFile returns the info of e, following a symlink, and whether it is
// a regular file. Dangling links are skipped.
func regularFile(dir string, e fs.DirEntry) (fs.FileInfo, bool, error) {
	switch {
	case e.Type().IsRegular():
		info, err := e.Info()
		if err != nil {
			return nil, false, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		return info, true, nil
	case e.Type()&fs.ModeSymlink != 0:
		info, err := os.Stat(filepath.Join(dir, e.Name()))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		return info, info.Mode().IsRegular(), nil
	default:
		return nil, false, nil
	}
}
