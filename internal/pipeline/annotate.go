package pipeline

import (
	"fmt"

	"github.com/couchcryptid/clim2parquet/internal/domain"
)

// Stage names used for the file_errors_total metric.
const (
	stageRead     = "read"
	stageExtract  = "extract"
	stageAnnotate = "annotate"
	stageWrite    = "write"
)

// StageError is a per-file failure tagged with the stage it happened in.
type StageError struct {
	Stage string
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// FileAnnotator reads one climate CSV and stamps its admin unit ID.
type FileAnnotator struct {
	reader    DatasetReader
	extractor domain.Extractor
}

// NewFileAnnotator creates a FileAnnotator.
func NewFileAnnotator(reader DatasetReader, extractor domain.Extractor) *FileAnnotator {
	return &FileAnnotator{reader: reader, extractor: extractor}
}

// Annotate extracts the admin code from the file name before reading, so a
// badly named file fails without touching its content.
func (a *FileAnnotator) Annotate(path string, level int, version string, ref *domain.ReferenceTable) (*domain.Dataset, error) {
	code, err := a.extractor.Extract(path, level, version)
	if err != nil {
		return nil, &StageError{Stage: stageExtract, Path: path, Err: err}
	}

	ds, err := a.reader.Read(path)
	if err != nil {
		return nil, &StageError{Stage: stageRead, Path: path, Err: err}
	}

	if err := domain.Annotate(ds, code, ref); err != nil {
		return nil, &StageError{Stage: stageAnnotate, Path: path, Err: err}
	}
	return ds, nil
}
