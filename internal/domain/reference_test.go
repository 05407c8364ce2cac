package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func code(version string, units ...int64) AdminCode {
	c := AdminCode{CodeVersion: version}
	for i, u := range units {
		c.Units[i] = Some(u)
	}
	return c
}

func TestCompareAdminCodes(t *testing.T) {
	tests := []struct {
		name string
		a, b AdminCode
		want int
	}{
		{"null before populated", code("1", 3), code("1", 3, 1), -1},
		{"slot order", code("1", 2, 9), code("1", 3, 1), -1},
		{"equal", code("1", 3, 1), code("1", 3, 1), 0},
		{"code version tie-break", code("1", 3), code("2", 3), -1},
		{"numeric code version", code("10", 3), code("2", 3), 1},
		{"country first", CountryAdminCode(), code("1", 1), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareAdminCodes(tt.a, tt.b))
			assert.Equal(t, -tt.want, CompareAdminCodes(tt.b, tt.a))
		})
	}
}

func TestNewReferenceTable_DenseSortedUnique(t *testing.T) {
	codes := []AdminCode{
		code("1", 3, 12),
		code("1", 3),
		CountryAdminCode(),
		code("1", 3, 12), // duplicate unit from another data source
		code("2", 3),
		code("1", 1),
	}

	table := NewReferenceTable(codes)
	require.Equal(t, 5, table.Len())

	expected := []ReferenceEntry{
		{Code: CountryAdminCode(), UID: 0},
		{Code: code("1", 1), UID: 1},
		{Code: code("1", 3), UID: 2},
		{Code: code("2", 3), UID: 3},
		{Code: code("1", 3, 12), UID: 4},
	}
	if diff := cmp.Diff(expected, table.Entries()); diff != "" {
		t.Fatalf("reference table mismatch (-want +got):\n%s", diff)
	}
}

func TestNewReferenceTable_Idempotent(t *testing.T) {
	codes := []AdminCode{code("1", 5, 2), code("1", 5), CountryAdminCode(), code("1", 4, 7, 1)}
	reversed := []AdminCode{codes[3], codes[2], codes[1], codes[0]}

	first := NewReferenceTable(codes)
	second := NewReferenceTable(reversed)
	assert.Equal(t, first.Entries(), second.Entries())
}

func TestNewReferenceTable_Scenario(t *testing.T) {
	country, err := ExtractAdminCode("v410_ABC.csv", 0, GADMVersion410)
	require.NoError(t, err)
	sub, err := ExtractAdminCode("v410_1_2_ABC.csv", 1, GADMVersion410)
	require.NoError(t, err)

	table := NewReferenceTable([]AdminCode{sub, country})
	require.Equal(t, 2, table.Len())

	countryID, err := table.Lookup(country)
	require.NoError(t, err)
	subID, err := table.Lookup(sub)
	require.NoError(t, err)

	assert.Equal(t, int64(0), countryID)
	assert.Equal(t, int64(1), subID)
}

func TestNewReferenceTable_StampsGenerationTime(t *testing.T) {
	at := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { SetClock(nil) })

	table := NewReferenceTable([]AdminCode{CountryAdminCode()})
	assert.Equal(t, at, table.GeneratedAt())
}

func TestReferenceTable_LookupNullAware(t *testing.T) {
	table := NewReferenceTable([]AdminCode{
		code("1", 0, 1),
		code("1", 0, 1, 1),
		CountryAdminCode(),
	})

	uid, err := table.Lookup(CountryAdminCode())
	require.NoError(t, err)
	assert.Equal(t, int64(0), uid)

	// A null slot carrying a stray code still compares as null.
	stray := CountryAdminCode()
	stray.Units[2] = Slot{Code: 7}
	uid, err = table.Lookup(stray)
	require.NoError(t, err)
	assert.Equal(t, int64(0), uid)

	_, err = table.Lookup(code("1", 0, 0))
	require.ErrorIs(t, err, ErrNoMatch)

	_, err = table.Lookup(code("2"))
	require.ErrorIs(t, err, ErrNoMatch)
}

func TestValidateReferenceEntries(t *testing.T) {
	built := NewReferenceTable([]AdminCode{code("1", 3), CountryAdminCode(), code("1", 3, 12)})
	require.NoError(t, ValidateReferenceEntries(built.Entries()))
	require.NoError(t, ValidateReferenceEntries(nil))

	gap := AdminCode{CodeVersion: "1"}
	gap.Units[0] = Some(3)
	gap.Units[2] = Some(4)

	tests := []struct {
		name    string
		entries []ReferenceEntry
		msg     string
	}{
		{"gap in code", []ReferenceEntry{{Code: gap, UID: 0}}, "has gaps"},
		{"empty code", []ReferenceEntry{{Code: AdminCode{CodeVersion: "1"}, UID: 0}}, "has gaps"},
		{"uid offset", []ReferenceEntry{{Code: CountryAdminCode(), UID: 1}}, "uid 1, want 0"},
		{"uid gap", []ReferenceEntry{
			{Code: CountryAdminCode(), UID: 0},
			{Code: code("1", 3), UID: 2},
		}, "uid 2, want 1"},
		{"repeated code", []ReferenceEntry{
			{Code: code("1", 3), UID: 0},
			{Code: code("1", 3), UID: 1},
		}, "repeated"},
		{"out of order", []ReferenceEntry{
			{Code: code("1", 3), UID: 0},
			{Code: CountryAdminCode(), UID: 1},
		}, "sorts before"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReferenceEntries(tt.entries)
			require.ErrorIs(t, err, ErrInvalidReferenceTable)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestReferenceTable_LookupAmbiguous(t *testing.T) {
	entries := []ReferenceEntry{
		{Code: code("1", 3), UID: 0},
		{Code: code("1", 3), UID: 1},
	}
	table := ReferenceTableFromEntries(entries, time.Time{})

	_, err := table.Lookup(code("1", 3))
	require.ErrorIs(t, err, ErrAmbiguousMatch)
	assert.Contains(t, err.Error(), "2 reference entries")
}

func TestAnnotate(t *testing.T) {
	table := NewReferenceTable([]AdminCode{CountryAdminCode(), code("1", 3)})
	ds := &Dataset{
		Path:   testLevel1File,
		Header: []string{"date", "value"},
		Rows:   [][]string{{"2020-01-01", "1.5"}, {"2020-01-02", "2.5"}},
	}

	require.NoError(t, Annotate(ds, code("1", 3), table))
	assert.True(t, ds.Annotated)
	assert.Equal(t, int64(1), ds.AdminUnitID)
	assert.Equal(t, 2, ds.NumRows())
}

func TestAnnotate_NoMatch(t *testing.T) {
	table := NewReferenceTable([]AdminCode{CountryAdminCode()})
	ds := &Dataset{Path: testLevel1File, Header: []string{"date"}}

	err := Annotate(ds, code("1", 3), table)
	require.ErrorIs(t, err, ErrNoMatch)
	assert.Contains(t, err.Error(), testLevel1File)
	assert.False(t, ds.Annotated)
}

func TestAnnotate_ColumnClash(t *testing.T) {
	table := NewReferenceTable([]AdminCode{CountryAdminCode()})
	ds := &Dataset{Path: testCountryFile, Header: []string{"date", AdminUnitIDColumn}}

	err := Annotate(ds, CountryAdminCode(), table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), AdminUnitIDColumn)
}

func TestSlotPointers(t *testing.T) {
	assert.Nil(t, Null().Ptr())
	require.NotNil(t, Some(4).Ptr())
	assert.Equal(t, int64(4), *Some(4).Ptr())
	assert.Equal(t, Some(4), SlotFromPtr(Some(4).Ptr()))
	assert.Equal(t, Null(), SlotFromPtr(nil))
}

func TestAdminCodeString(t *testing.T) {
	assert.Equal(t, "{0, null, null, null} v1", CountryAdminCode().String())
}
