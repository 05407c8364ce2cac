package csvfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/couchcryptid/clim2parquet/internal/domain"
)

// Reader loads climate CSV files into datasets.
type Reader struct{}

// NewReader creates a Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read parses the CSV file at path. The first row is the header. Short rows
// are padded with empty cells; long rows are an error.
func (r *Reader) Read(path string) (*domain.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	decoded, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	ds, err := parse(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	ds.Path = path
	return ds, nil
}

// decode converts data to UTF-8. A BOM selects UTF-8 or UTF-16; without one,
// invalid UTF-8 is read as Latin-1.
func decode(data []byte) ([]byte, error) {
	var fallback transform.Transformer = unicode.UTF8.NewDecoder()
	if !utf8.Valid(data) {
		fallback = charmap.ISO8859_1.NewDecoder()
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(fallback), data)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parse(src io.Reader) (*domain.Dataset, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file: no header row found")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header, err = normalizeHeader(header)
	if err != nil {
		return nil, err
	}

	ds := &domain.Dataset{Header: header}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if len(rec) > len(header) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", line, len(rec), len(header))
		}
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		ds.Rows = append(ds.Rows, rec)
	}
	return ds, nil
}

// normalizeHeader trims names, names blank columns after their position and
// rejects duplicates.
func normalizeHeader(header []string) ([]string, error) {
	seen := make(map[string]struct{}, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		if _, ok := seen[h]; ok {
			return nil, fmt.Errorf("duplicate column %q", h)
		}
		seen[h] = struct{}{}
		out[i] = h
	}
	return out, nil
}
