package domain

import (
	"fmt"
	"slices"
)

// AdminUnitIDColumn is the column added to every converted dataset.
const AdminUnitIDColumn = "admin_unit_id"

// Dataset is the content of one climate CSV file. Cells are kept as text;
// an empty cell is a missing value.
type Dataset struct {
	Path   string
	Header []string
	Rows   [][]string

	// AdminUnitID is set by Annotate and applies to every row.
	AdminUnitID int64
	Annotated   bool
}

// Annotate resolves code against ref and stamps the surrogate ID onto every
// row of ds. A code missing from the table is fatal for the file, since a
// wrong or absent ID would corrupt downstream joins.
func Annotate(ds *Dataset, code AdminCode, ref *ReferenceTable) error {
	if slices.Contains(ds.Header, AdminUnitIDColumn) {
		return fmt.Errorf("%s: column %q already present", ds.Path, AdminUnitIDColumn)
	}

	uid, err := ref.Lookup(code)
	if err != nil {
		return fmt.Errorf("%s: %w", ds.Path, err)
	}

	ds.AdminUnitID = uid
	ds.Annotated = true
	return nil
}

// NumRows returns the number of data rows.
func (ds *Dataset) NumRows() int {
	return len(ds.Rows)
}
