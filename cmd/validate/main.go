// Command validate checks a converter output directory against its manifest:
// every listed Parquet file exists with the recorded row count, carries the
// admin_unit_id column, matches the source CSVs, and only uses IDs present in
// the reference table.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -dir data/parquet \
//	  -from data/csv \
//	  -ref data/admin_units.parquet
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/couchcryptid/clim2parquet/internal/adapter/csvfile"
	"github.com/couchcryptid/clim2parquet/internal/adapter/fsscan"
	"github.com/couchcryptid/clim2parquet/internal/adapter/manifest"
	"github.com/couchcryptid/clim2parquet/internal/adapter/parquet"
	"github.com/couchcryptid/clim2parquet/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name    string
	skipped bool
	errors  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dir := flag.String("dir", "", "converter output directory containing manifest.yaml")
	from := flag.String("from", "", "directory of the source CSV files (optional)")
	ref := flag.String("ref", "", "path to the reference table (optional)")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dir, *from, *ref); code != 0 {
		os.Exit(code)
	}
}

func run(dir, from, refPath string) int {
	fmt.Println("=== Parquet Output Validation ===")
	fmt.Println()

	m, err := manifest.Read(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	var ref *domain.ReferenceTable
	if refPath != "" {
		ref, err = parquet.NewReferenceStore(refPath).Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
	}

	phases := []*phase{
		validateOutputs(dir, m),
		validateSourceParity(from, m),
		validateAdminUnitIDs(dir, m, ref),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		switch {
		case p.skipped:
			status = "\033[33mSKIP\033[0m"
		case !p.passed():
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Outputs: %d written, %d skipped, %d reference entries\n",
		len(m.Outputs), len(m.Skipped), m.ReferenceEntries)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Outputs ──
// Every manifest entry names an existing file with the recorded rows.

func validateOutputs(dir string, m *manifest.Manifest) *phase {
	p := &phase{name: "Phase 1: Outputs match manifest"}
	for _, o := range m.Outputs {
		src, err := domain.LookupSource(o.Source)
		if err != nil {
			p.errorf("%s: %v", o.File, err)
			continue
		}
		if want := domain.OutputName(src, o.Level); o.File != want {
			p.errorf("%s: expected file name %s", o.File, want)
		}

		info, err := parquet.Inspect(filepath.Join(dir, o.File))
		if err != nil {
			p.errorf("%v", err)
			continue
		}
		if info.NumRows != o.Rows {
			p.errorf("%s: %d rows, manifest says %d", o.File, info.NumRows, o.Rows)
		}
		if !slices.Contains(info.Columns, domain.AdminUnitIDColumn) {
			p.errorf("%s: missing %s column", o.File, domain.AdminUnitIDColumn)
		}
	}
	return p
}

// ── Phase 2: Source parity ──
// The source CSVs for each output add up to the rows written.

func validateSourceParity(from string, m *manifest.Manifest) *phase {
	p := &phase{name: "Phase 2: Source parity (CSV files)"}
	if from == "" {
		p.skipped = true
		return p
	}

	finder := fsscan.NewFinder(slog.New(slog.NewTextHandler(io.Discard, nil)))
	reader := csvfile.NewReader()
	for _, o := range m.Outputs {
		src, err := domain.LookupSource(o.Source)
		if err != nil {
			continue // reported in phase 1
		}
		paths, err := finder.Find(from, src, o.Level, m.GADMVersion)
		if err != nil {
			p.errorf("%s: %v", o.File, err)
			continue
		}
		if len(paths) != o.Files {
			p.errorf("%s: %d source files, manifest says %d", o.File, len(paths), o.Files)
		}

		var rows int64
		for _, path := range paths {
			ds, err := reader.Read(path)
			if err != nil {
				p.errorf("%v", err)
				continue
			}
			rows += int64(ds.NumRows())
		}
		if rows != o.Rows {
			p.errorf("%s: %d source rows, manifest says %d", o.File, rows, o.Rows)
		}
	}
	return p
}

// ── Phase 3: Admin unit IDs ──
// Every admin_unit_id is a reference table UID.

func validateAdminUnitIDs(dir string, m *manifest.Manifest, ref *domain.ReferenceTable) *phase {
	p := &phase{name: "Phase 3: Admin unit IDs resolve"}
	if ref == nil {
		p.skipped = true
		return p
	}
	if ref.Len() != m.ReferenceEntries {
		p.errorf("reference table has %d entries, manifest says %d", ref.Len(), m.ReferenceEntries)
	}

	uids := make(map[int64]struct{}, ref.Len())
	for _, e := range ref.Entries() {
		uids[e.UID] = struct{}{}
	}

	for _, o := range m.Outputs {
		ids, err := parquet.ReadInt64Column(filepath.Join(dir, o.File), domain.AdminUnitIDColumn)
		if err != nil {
			p.errorf("%v", err)
			continue
		}
		if int64(len(ids)) != o.Rows {
			p.errorf("%s: %d admin unit IDs for %d rows", o.File, len(ids), o.Rows)
		}
		unknown := 0
		for _, id := range ids {
			if _, ok := uids[id]; !ok {
				unknown++
			}
		}
		if unknown > 0 {
			p.errorf("%s: %d rows with IDs missing from the reference table", o.File, unknown)
		}
	}
	return p
}
