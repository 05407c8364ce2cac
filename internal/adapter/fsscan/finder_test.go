package fsscan

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/clim2parquet/internal/domain"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("date,value\n"), 0o600))
}

func TestFinder_Find(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"BGD_v410_CHIRPS_2020.csv",
		"BGD_v410_3_1_CHIRPS_2020.csv",
		"BGD_v410_2_1_CHIRPS_2020.csv",
		"BGD_v410_3_12_1_CHIRPS_2020.csv",
		"BGD_v410_ERA5_Land_2m_temperature_2020.csv",
		"BGD_v410_ERA5_Land_2m_temperature_daymin_2020.csv",
		"README.md",
	} {
		touch(t, dir, name)
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "BGD_v410_9_1_CHIRPS_dir"), 0o755))

	finder := NewFinder(slog.Default())
	chirps, err := domain.LookupSource("CHIRPS")
	require.NoError(t, err)

	files, err := finder.Find(dir, chirps, 1, domain.GADMVersion410)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "BGD_v410_2_1_CHIRPS_2020.csv"),
		filepath.Join(dir, "BGD_v410_3_1_CHIRPS_2020.csv"),
	}, files)

	files, err = finder.Find(dir, chirps, 0, domain.GADMVersion410)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "BGD_v410_CHIRPS_2020.csv")}, files)

	era5mean, err := domain.LookupSource("ERA5_mean")
	require.NoError(t, err)
	files, err = finder.Find(dir, era5mean, 0, domain.GADMVersion410)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "BGD_v410_ERA5_Land_2m_temperature_2020.csv")}, files)
}

func TestFinder_FollowsSymlinks(t *testing.T) {
	store, dir := t.TempDir(), t.TempDir()
	touch(t, store, "target.csv")
	require.NoError(t, os.Mkdir(filepath.Join(store, "subdir"), 0o755))

	linked := filepath.Join(dir, "BGD_v410_3_1_CHIRPS_2020.csv")
	require.NoError(t, os.Symlink(filepath.Join(store, "target.csv"), linked))
	require.NoError(t, os.Symlink(filepath.Join(store, "missing.csv"), filepath.Join(dir, "BGD_v410_4_1_CHIRPS_2020.csv")))
	require.NoError(t, os.Symlink(filepath.Join(store, "subdir"), filepath.Join(dir, "BGD_v410_5_1_CHIRPS_2020.csv")))

	chirps, err := domain.LookupSource("CHIRPS")
	require.NoError(t, err)

	files, err := NewFinder(slog.Default()).Find(dir, chirps, 1, domain.GADMVersion410)
	require.NoError(t, err)
	assert.Equal(t, []string{linked}, files)
}

func TestFinder_FindNone(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "BGD_v410_CHIRPS_2020.csv")

	persiann, err := domain.LookupSource("PERSIANN")
	require.NoError(t, err)

	files, err := NewFinder(slog.Default()).Find(dir, persiann, 1, domain.GADMVersion410)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFinder_MissingDirectory(t *testing.T) {
	chirps, err := domain.LookupSource("CHIRPS")
	require.NoError(t, err)

	_, err = NewFinder(slog.Default()).Find(filepath.Join(t.TempDir(), "dummy_from"), chirps, 0, domain.GADMVersion410)
	require.ErrorIs(t, err, domain.ErrDirectoryNotFound)
}

func TestRequireDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, RequireDir(dir, "data output"))

	file := filepath.Join(dir, "file.csv")
	touch(t, dir, "file.csv")
	err := RequireDir(file, "data output")
	require.ErrorIs(t, err, domain.ErrDirectoryNotFound)
	assert.Contains(t, err.Error(), "data output directory")
}
