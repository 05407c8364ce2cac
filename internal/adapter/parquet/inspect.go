package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	parquetgo "github.com/parquet-go/parquet-go"
)

// FileInfo summarizes a Parquet file.
type FileInfo struct {
	NumRows int64
	Columns []string
}

// Inspect reads the footer of the Parquet file at path.
func Inspect(path string) (FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("inspect %s: %w", path, err)
	}
	defer f.Close()

	pf, err := openFile(f)
	if err != nil {
		return FileInfo{}, fmt.Errorf("inspect %s: %w", path, err)
	}

	paths := pf.Schema().Columns()
	cols := make([]string, len(paths))
	for i, p := range paths {
		cols[i] = strings.Join(p, ".")
	}
	return FileInfo{NumRows: pf.NumRows(), Columns: cols}, nil
}

// ReadInt64Column returns the non-null values of an int64 column in row order.
func ReadInt64Column(path, column string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()

	pf, err := openFile(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	leaf, ok := pf.Schema().Lookup(column)
	if !ok {
		return nil, fmt.Errorf("read %s: no column %q", path, column)
	}

	r := parquetgo.NewReader(f)
	defer r.Close()

	out := make([]int64, 0, pf.NumRows())
	rows := make([]parquetgo.Row, 128)
	for {
		n, err := r.ReadRows(rows)
		for _, row := range rows[:n] {
			for _, v := range row {
				if v.Column() == leaf.ColumnIndex && !v.IsNull() {
					out = append(out, v.Int64())
				}
			}
		}
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
}

func openFile(f *os.File) (*parquetgo.File, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return parquetgo.OpenFile(f, info.Size())
}
