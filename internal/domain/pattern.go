package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// GADMVersion410 is the marker for GADM version 4.1.0, the only naming
// convention currently supported.
const GADMVersion410 = "v410"

var (
	gadmLevels   = []int{0, 1, 2, 3}
	gadmVersions = []string{GADMVersion410}
)

// GADMLevels returns the supported admin levels.
func GADMLevels() []int {
	return slices.Clone(gadmLevels)
}

// GADMVersions returns the supported naming convention versions.
func GADMVersions() []string {
	return slices.Clone(gadmVersions)
}

// ValidateLevel returns ErrInvalidParameter for levels outside 0–3.
func ValidateLevel(level int) error {
	if !slices.Contains(gadmLevels, level) {
		return fmt.Errorf("%w: admin level %d not available, supported levels are 0, 1, 2, 3", ErrInvalidParameter, level)
	}
	return nil
}

// ValidateVersion returns ErrInvalidParameter for unsupported GADM versions.
func ValidateVersion(version string) error {
	if !slices.Contains(gadmVersions, version) {
		return fmt.Errorf("%w: GADM version %q not available, choose from %s",
			ErrInvalidParameter, version, strings.Join(gadmVersions, ", "))
	}
	return nil
}

// DigitGroups returns how many "<digits>_" groups follow the version marker
// in a file at the given admin level. Country files have none; every other
// level carries one code per level plus the trailing code version.
func DigitGroups(level int) int {
	if level <= 0 {
		return 0
	}
	return level + 1
}

// LevelPattern returns a regular expression matching the version marker
// followed by the digit groups for an admin level, e.g. `v410_\d+_\d+_` for
// level 1. Callers append a data source pattern to filter a directory.
func LevelPattern(level int, version string) string {
	return regexp.QuoteMeta(version) + "_" + strings.Repeat(`\d+_`, DigitGroups(level))
}

// FilePattern compiles the pattern selecting one data source's files at one
// admin level.
func FilePattern(level int, version string, src DataSource) (*regexp.Regexp, error) {
	re, err := regexp.Compile(LevelPattern(level, version) + src.Regex)
	if err != nil {
		return nil, fmt.Errorf("compile pattern for %s: %w", src.Name, err)
	}
	return re, nil
}
