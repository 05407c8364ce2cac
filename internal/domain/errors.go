package domain

import "errors"

// Sentinel errors. Functions in this package wrap them with the offending
// value, so callers match with errors.Is and users still see what was wrong.
var (
	// ErrInvalidParameter reports an unknown data source, admin level or GADM
	// version. Raised before any I/O.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDirectoryNotFound reports a missing input or output directory.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrNoFilesFound marks a (data source, admin level) pair with no matching
	// files. It is a warning: the pair is skipped and processing continues.
	ErrNoFilesFound = errors.New("no files found")

	// ErrParse reports a filename that does not follow the naming convention
	// for the requested admin level.
	ErrParse = errors.New("filename parse error")

	// ErrUnrecognizedCountry reports a country code missing from the known
	// codes list.
	ErrUnrecognizedCountry = errors.New("unrecognized country code")

	// ErrNoMatch reports an admin code with no entry in the reference table.
	ErrNoMatch = errors.New("no matching admin unit")

	// ErrAmbiguousMatch reports an admin code with more than one entry in the
	// reference table, which means the table was built incorrectly.
	ErrAmbiguousMatch = errors.New("ambiguous admin unit")

	// ErrInvalidReferenceTable reports persisted reference entries that could
	// not have been produced by NewReferenceTable.
	ErrInvalidReferenceTable = errors.New("invalid reference table")
)
