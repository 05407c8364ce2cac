package parquet

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	parquetgo "github.com/parquet-go/parquet-go"

	"github.com/couchcryptid/clim2parquet/internal/domain"
)

const generatedAtKey = "generated_at"

// referenceRow is the persisted shape of one reference table entry. Null
// admin slots are stored as Parquet nulls.
type referenceRow struct {
	AdminUnit0     *int64 `parquet:"admin_unit_0"`
	AdminUnit1     *int64 `parquet:"admin_unit_1"`
	AdminUnit2     *int64 `parquet:"admin_unit_2"`
	AdminUnit3     *int64 `parquet:"admin_unit_3"`
	GIDCodeVersion string `parquet:"gid_code_version"`
	UID            int64  `parquet:"uid"`
}

// ReferenceStore persists the admin unit reference table as a Parquet file.
type ReferenceStore struct {
	path string
}

// NewReferenceStore creates a ReferenceStore backed by the file at path.
func NewReferenceStore(path string) *ReferenceStore {
	return &ReferenceStore{path: path}
}

// Path returns the backing file path.
func (s *ReferenceStore) Path() string { return s.path }

// Exists reports whether a persisted table is present.
func (s *ReferenceStore) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && info.Mode().IsRegular()
}

// Save writes the table, replacing any existing file.
func (s *ReferenceStore) Save(table *domain.ReferenceTable) error {
	entries := table.Entries()
	rows := make([]referenceRow, len(entries))
	for i, e := range entries {
		rows[i] = referenceRow{
			AdminUnit0:     e.Code.Units[0].Ptr(),
			AdminUnit1:     e.Code.Units[1].Ptr(),
			AdminUnit2:     e.Code.Units[2].Ptr(),
			AdminUnit3:     e.Code.Units[3].Ptr(),
			GIDCodeVersion: e.Code.CodeVersion,
			UID:            e.UID,
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("save reference table: %w", err)
	}
	tmp := s.path + ".tmp"
	err := parquetgo.WriteFile(tmp, rows,
		parquetgo.Compression(&parquetgo.Snappy),
		parquetgo.KeyValueMetadata(generatedAtKey, table.GeneratedAt().UTC().Format(time.RFC3339Nano)),
	)
	if err != nil {
		os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("save reference table %s: %w", s.path, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("save reference table %s: %w", s.path, err)
	}
	return nil
}

// Load reads a table previously written by Save.
func (s *ReferenceStore) Load() (*domain.ReferenceTable, error) {
	rows, err := parquetgo.ReadFile[referenceRow](s.path)
	if err != nil {
		return nil, fmt.Errorf("load reference table %s: %w", s.path, err)
	}

	entries := make([]domain.ReferenceEntry, len(rows))
	for i, r := range rows {
		entries[i] = domain.ReferenceEntry{
			Code: domain.AdminCode{
				Units: [domain.MaxLevels]domain.Slot{
					domain.SlotFromPtr(r.AdminUnit0),
					domain.SlotFromPtr(r.AdminUnit1),
					domain.SlotFromPtr(r.AdminUnit2),
					domain.SlotFromPtr(r.AdminUnit3),
				},
				CodeVersion: r.GIDCodeVersion,
			},
			UID: r.UID,
		}
	}

	if err := domain.ValidateReferenceEntries(entries); err != nil {
		return nil, fmt.Errorf("load reference table %s: %w", s.path, err)
	}

	generatedAt, err := s.generatedAt()
	if err != nil {
		return nil, err
	}
	return domain.ReferenceTableFromEntries(entries, generatedAt), nil
}

func (s *ReferenceStore) generatedAt() (time.Time, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return time.Time{}, fmt.Errorf("load reference table %s: %w", s.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return time.Time{}, fmt.Errorf("load reference table %s: %w", s.path, err)
	}
	pf, err := parquetgo.OpenFile(f, info.Size())
	if err != nil {
		return time.Time{}, fmt.Errorf("load reference table %s: %w", s.path, err)
	}
	raw, ok := pf.Lookup(generatedAtKey)
	if !ok {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("load reference table %s: invalid %s: %w", s.path, generatedAtKey, err)
	}
	return t, nil
}
