package domain

import (
	"fmt"
	"slices"
	"time"
)

// ReferenceEntry is one row of the reference table.
type ReferenceEntry struct {
	Code AdminCode
	UID  int64
}

// ReferenceTable maps admin codes to surrogate IDs. It is read-only once
// built and safe to share between goroutines.
type ReferenceTable struct {
	entries     []ReferenceEntry
	index       map[AdminCode][]int64
	generatedAt time.Time
}

// NewReferenceTable deduplicates codes, sorts them (slots ascending with nulls
// first, then code version) and assigns each the 0-based rank as its UID.
func NewReferenceTable(codes []AdminCode) *ReferenceTable {
	seen := make(map[AdminCode]struct{}, len(codes))
	distinct := make([]AdminCode, 0, len(codes))
	for _, c := range codes {
		c = c.normalize()
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		distinct = append(distinct, c)
	}
	slices.SortFunc(distinct, CompareAdminCodes)

	entries := make([]ReferenceEntry, len(distinct))
	for i, c := range distinct {
		entries[i] = ReferenceEntry{Code: c, UID: int64(i)}
	}
	return newReferenceTable(entries, clock.Now())
}

// ReferenceTableFromEntries wraps previously persisted entries. Entries are
// kept as given; duplicates surface as ErrAmbiguousMatch on lookup.
func ReferenceTableFromEntries(entries []ReferenceEntry, generatedAt time.Time) *ReferenceTable {
	return newReferenceTable(slices.Clone(entries), generatedAt)
}

// ValidateReferenceEntries checks entries against the shape NewReferenceTable
// produces: codes filled from level 0 without gaps, no repeats, ascending
// order and UIDs equal to the row index.
func ValidateReferenceEntries(entries []ReferenceEntry) error {
	for i, e := range entries {
		if !e.Code.Contiguous() {
			return fmt.Errorf("%w: row %d: admin code %s has gaps", ErrInvalidReferenceTable, i, e.Code)
		}
		if e.UID != int64(i) {
			return fmt.Errorf("%w: row %d: uid %d, want %d", ErrInvalidReferenceTable, i, e.UID, i)
		}
		if i == 0 {
			continue
		}
		prev := entries[i-1].Code
		if prev.Equal(e.Code) {
			return fmt.Errorf("%w: row %d: admin code %s repeated", ErrInvalidReferenceTable, i, e.Code)
		}
		if CompareAdminCodes(prev, e.Code) > 0 {
			return fmt.Errorf("%w: row %d: admin code %s sorts before %s", ErrInvalidReferenceTable, i, e.Code, prev)
		}
	}
	return nil
}

func newReferenceTable(entries []ReferenceEntry, generatedAt time.Time) *ReferenceTable {
	index := make(map[AdminCode][]int64, len(entries))
	for i := range entries {
		entries[i].Code = entries[i].Code.normalize()
		key := entries[i].Code
		index[key] = append(index[key], entries[i].UID)
	}
	return &ReferenceTable{entries: entries, index: index, generatedAt: generatedAt}
}

// Entries returns a copy of the table rows in UID order as built.
func (t *ReferenceTable) Entries() []ReferenceEntry {
	return slices.Clone(t.entries)
}

// Len returns the number of rows.
func (t *ReferenceTable) Len() int {
	return len(t.entries)
}

// GeneratedAt returns when the table was built.
func (t *ReferenceTable) GeneratedAt() time.Time {
	return t.generatedAt
}

// Lookup returns the UID of the entry whose four slots and code version equal
// code. A null slot only matches a null slot. Zero matches is ErrNoMatch; more
// than one is ErrAmbiguousMatch.
func (t *ReferenceTable) Lookup(code AdminCode) (int64, error) {
	uids := t.index[code.normalize()]
	switch len(uids) {
	case 0:
		return 0, fmt.Errorf("%w: %s is not in the reference table", ErrNoMatch, code)
	case 1:
		return uids[0], nil
	default:
		return 0, fmt.Errorf("%w: %s matches %d reference entries (uids %v)", ErrAmbiguousMatch, code, len(uids), uids)
	}
}
