package parquet

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	parquetgo "github.com/parquet-go/parquet-go"

	"github.com/couchcryptid/clim2parquet/internal/domain"
)

// writeBatchSize bounds how many rows are buffered before each WriteRows call.
const writeBatchSize = 1024

type columnKind int

const (
	kindInt64 columnKind = iota
	kindDouble
	kindString
)

// column is one output column: its name, inferred type and the position of
// the column in each input dataset (-1 when the dataset lacks it).
type column struct {
	name    string
	kind    columnKind
	sources []int
	index   int
}

// Writer serializes annotated datasets into a single Parquet file.
type Writer struct{}

// NewWriter creates a Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write concatenates sets vertically and writes them to path. The output
// carries the union of the input columns plus admin_unit_id. Each column is
// stored as int64 when every non-empty cell parses as an integer, double when
// every cell parses as a float, and string otherwise; empty cells are null.
// It returns the number of rows written.
func (w *Writer) Write(path string, sets []*domain.Dataset) (int64, error) {
	if len(sets) == 0 {
		return 0, fmt.Errorf("write %s: no datasets", path)
	}
	for _, ds := range sets {
		if !ds.Annotated {
			return 0, fmt.Errorf("write %s: %s has no %s", path, ds.Path, domain.AdminUnitIDColumn)
		}
	}

	cols := planColumns(sets)
	schema, idColumn := buildSchema(cols)

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.parquet")
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename

	n, err := writeRows(tmp, schema, cols, idColumn, sets)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("rename %s: %w", path, err)
	}
	return n, nil
}

func writeRows(f *os.File, schema *parquetgo.Schema, cols []*column, idColumn int, sets []*domain.Dataset) (int64, error) {
	pw := parquetgo.NewWriter(f, schema, parquetgo.Compression(&parquetgo.Snappy))

	var written int64
	batch := make([]parquetgo.Row, 0, writeBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := pw.WriteRows(batch); err != nil {
			return err
		}
		written += int64(len(batch))
		batch = batch[:0]
		return nil
	}

	for s, ds := range sets {
		for _, rec := range ds.Rows {
			row, err := buildRow(cols, idColumn, s, rec, ds.AdminUnitID)
			if err != nil {
				return 0, fmt.Errorf("%s: %w", ds.Path, err)
			}
			batch = append(batch, row)
			if len(batch) == writeBatchSize {
				if err := flush(); err != nil {
					return 0, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return 0, err
	}
	if err := pw.Close(); err != nil {
		return 0, err
	}
	return written, nil
}

// planColumns takes the union of headers in first-seen order and infers a
// type for each column.
func planColumns(sets []*domain.Dataset) []*column {
	var cols []*column
	byName := make(map[string]*column)
	for s, ds := range sets {
		for i, h := range ds.Header {
			c, ok := byName[h]
			if !ok {
				c = &column{name: h, sources: make([]int, len(sets))}
				for j := range c.sources {
					c.sources[j] = -1
				}
				byName[h] = c
				cols = append(cols, c)
			}
			c.sources[s] = i
		}
	}

	for _, c := range cols {
		c.kind = inferKind(c, sets)
	}
	return cols
}

func inferKind(c *column, sets []*domain.Dataset) columnKind {
	kind := kindInt64
	seen := false
	for s, ds := range sets {
		i := c.sources[s]
		if i < 0 {
			continue
		}
		for _, rec := range ds.Rows {
			v := rec[i]
			if v == "" {
				continue
			}
			seen = true
			if kind == kindInt64 {
				if _, err := strconv.ParseInt(v, 10, 64); err == nil {
					continue
				}
				kind = kindDouble
			}
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return kindString
			}
		}
	}
	if !seen {
		return kindString
	}
	return kind
}

func buildSchema(cols []*column) (*parquetgo.Schema, int) {
	group := parquetgo.Group{
		domain.AdminUnitIDColumn: parquetgo.Int(64),
	}
	for _, c := range cols {
		group[c.name] = parquetgo.Optional(leafNode(c.kind))
	}
	schema := parquetgo.NewSchema("climate", group)

	for _, c := range cols {
		leaf, _ := schema.Lookup(c.name)
		c.index = leaf.ColumnIndex
	}
	id, _ := schema.Lookup(domain.AdminUnitIDColumn)
	return schema, id.ColumnIndex
}

func leafNode(kind columnKind) parquetgo.Node {
	switch kind {
	case kindInt64:
		return parquetgo.Int(64)
	case kindDouble:
		return parquetgo.Leaf(parquetgo.DoubleType)
	default:
		return parquetgo.String()
	}
}

// buildRow lays out values in column index order, which is how the writer
// expects them.
func buildRow(cols []*column, idColumn, set int, rec []string, uid int64) (parquetgo.Row, error) {
	row := make(parquetgo.Row, len(cols)+1)
	row[idColumn] = parquetgo.Int64Value(uid).Level(0, 0, idColumn)

	for _, c := range cols {
		i := c.sources[set]
		if i < 0 || rec[i] == "" {
			row[c.index] = parquetgo.NullValue().Level(0, 0, c.index)
			continue
		}
		v, err := cellValue(c.kind, rec[i])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.name, err)
		}
		row[c.index] = v.Level(0, 1, c.index)
	}
	return row, nil
}

func cellValue(kind columnKind, s string) (parquetgo.Value, error) {
	switch kind {
	case kindInt64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return parquetgo.Value{}, err
		}
		return parquetgo.Int64Value(n), nil
	case kindDouble:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return parquetgo.Value{}, err
		}
		return parquetgo.DoubleValue(f), nil
	default:
		return parquetgo.ByteArrayValue([]byte(s)), nil
	}
}
