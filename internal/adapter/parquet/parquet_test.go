package parquet

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	parquetgo "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/clim2parquet/internal/domain"
)

func annotated(path string, uid int64, header []string, rows ...[]string) *domain.Dataset {
	return &domain.Dataset{Path: path, Header: header, Rows: rows, AdminUnitID: uid, Annotated: true}
}

func leafKinds(t *testing.T, path string) map[string]parquetgo.Kind {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	pf, err := openFile(f)
	require.NoError(t, err)

	kinds := make(map[string]parquetgo.Kind)
	for _, col := range pf.Schema().Columns() {
		leaf, ok := pf.Schema().Lookup(col...)
		require.True(t, ok)
		kinds[col[0]] = leaf.Node.Type().Kind()
	}
	return kinds
}

func TestWriter_Write(t *testing.T) {
	out := filepath.Join(t.TempDir(), "chirps_admin_1.parquet")
	sets := []*domain.Dataset{
		annotated("a.csv", 1, []string{"date", "precip", "count"},
			[]string{"2020-01-01", "1.5", "3"},
			[]string{"2020-01-02", "2", ""},
		),
		annotated("b.csv", 4, []string{"date", "precip", "count", "station"},
			[]string{"2020-01-01", "0", "7", "north"},
		),
	}

	n, err := NewWriter().Write(out, sets)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	info, err := Inspect(out)
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.NumRows)
	assert.ElementsMatch(t, []string{"admin_unit_id", "count", "date", "precip", "station"}, info.Columns)

	kinds := leafKinds(t, out)
	assert.Equal(t, parquetgo.Int64, kinds["admin_unit_id"])
	assert.Equal(t, parquetgo.Int64, kinds["count"])
	assert.Equal(t, parquetgo.Double, kinds["precip"])
	assert.Equal(t, parquetgo.ByteArray, kinds["date"])
	assert.Equal(t, parquetgo.ByteArray, kinds["station"])

	ids, err := ReadInt64Column(out, domain.AdminUnitIDColumn)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1, 4}, ids)

	counts, err := ReadInt64Column(out, "count")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 7}, counts, "empty cell is stored as null")
}

func TestWriter_MixedColumnFallsBackToString(t *testing.T) {
	out := filepath.Join(t.TempDir(), "mixed.parquet")
	sets := []*domain.Dataset{
		annotated("a.csv", 0, []string{"value"}, []string{"12"}, []string{"n/a"}),
	}

	_, err := NewWriter().Write(out, sets)
	require.NoError(t, err)
	assert.Equal(t, parquetgo.ByteArray, leafKinds(t, out)["value"])
}

func TestWriter_AllEmptyColumnIsString(t *testing.T) {
	out := filepath.Join(t.TempDir(), "empty.parquet")
	sets := []*domain.Dataset{
		annotated("a.csv", 0, []string{"date", "note"}, []string{"2020", ""}),
	}

	_, err := NewWriter().Write(out, sets)
	require.NoError(t, err)
	kinds := leafKinds(t, out)
	assert.Equal(t, parquetgo.ByteArray, kinds["note"])
	assert.Equal(t, parquetgo.Int64, kinds["date"])
}

func TestWriter_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("no datasets", func(t *testing.T) {
		_, err := NewWriter().Write(filepath.Join(dir, "x.parquet"), nil)
		require.Error(t, err)
	})

	t.Run("unannotated dataset", func(t *testing.T) {
		ds := &domain.Dataset{Path: "a.csv", Header: []string{"v"}, Rows: [][]string{{"1"}}}
		_, err := NewWriter().Write(filepath.Join(dir, "y.parquet"), []*domain.Dataset{ds})
		require.Error(t, err)
		assert.Contains(t, err.Error(), domain.AdminUnitIDColumn)
		assert.NoFileExists(t, filepath.Join(dir, "y.parquet"))
	})
}

func TestReferenceStore_RoundTrip(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	domain.SetClock(fake)
	t.Cleanup(func() { domain.SetClock(nil) })

	sub := domain.AdminCode{CodeVersion: "1"}
	sub.Units[0] = domain.Some(3)
	sub.Units[1] = domain.Some(12)
	table := domain.NewReferenceTable([]domain.AdminCode{domain.CountryAdminCode(), sub})

	store := NewReferenceStore(filepath.Join(t.TempDir(), "ref", "admin_units.parquet"))
	assert.False(t, store.Exists())
	require.NoError(t, store.Save(table))
	assert.True(t, store.Exists())

	loaded, err := store.Load()
	require.NoError(t, err)
	if diff := cmp.Diff(table.Entries(), loaded.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, loaded.GeneratedAt().Equal(fake.Now()))

	uid, err := loaded.Lookup(sub)
	require.NoError(t, err)
	assert.Equal(t, int64(1), uid)

	info, err := Inspect(store.Path())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"admin_unit_0", "admin_unit_1", "admin_unit_2", "admin_unit_3", "gid_code_version", "uid",
	}, info.Columns)
}

func TestReferenceStore_LoadMissing(t *testing.T) {
	_, err := NewReferenceStore(filepath.Join(t.TempDir(), "nope.parquet")).Load()
	require.Error(t, err)
}

func TestReferenceStore_LoadRejectsInvalidTable(t *testing.T) {
	sub := domain.AdminCode{CodeVersion: "1"}
	sub.Units[0] = domain.Some(3)

	tests := []struct {
		name    string
		entries []domain.ReferenceEntry
	}{
		{"duplicate code", []domain.ReferenceEntry{
			{Code: domain.CountryAdminCode(), UID: 0},
			{Code: sub, UID: 1},
			{Code: sub, UID: 2},
		}},
		{"sparse uids", []domain.ReferenceEntry{
			{Code: domain.CountryAdminCode(), UID: 0},
			{Code: sub, UID: 5},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewReferenceStore(filepath.Join(t.TempDir(), "admin_units.parquet"))
			require.NoError(t, store.Save(domain.ReferenceTableFromEntries(tt.entries, time.Now())))

			_, err := store.Load()
			require.ErrorIs(t, err, domain.ErrInvalidReferenceTable)
			assert.Contains(t, err.Error(), store.Path())
		})
	}
}
