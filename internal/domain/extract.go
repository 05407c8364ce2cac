package domain

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Extractor derives the admin code of a climate data file from its name.
type Extractor interface {
	Extract(filename string, level int, version string) (AdminCode, error)
}

// FilenameExtractor implements Extractor with the GADM naming convention and,
// optionally, country code validation.
type FilenameExtractor struct {
	validateCountry bool
}

// NewFilenameExtractor creates a FilenameExtractor. With validateCountry set,
// filenames must carry a known ISO alpha-3 code before the version marker.
func NewFilenameExtractor(validateCountry bool) *FilenameExtractor {
	return &FilenameExtractor{validateCountry: validateCountry}
}

func (e *FilenameExtractor) Extract(filename string, level int, version string) (AdminCode, error) {
	if e.validateCountry {
		if err := ValidateVersion(version); err != nil {
			return AdminCode{}, err
		}
		if _, err := CountryCode(filename, version); err != nil {
			return AdminCode{}, err
		}
	}
	return ExtractAdminCode(filename, level, version)
}

// filenameTokens is a filename split at the version marker into the digit
// groups that follow it and the free-form suffix.
type filenameTokens struct {
	groups []int64
	suffix string
}

// tokenize scans name for each "<version>_" marker and, after every one,
// consumes the tokens made only of digits and terminated by "_". Results are
// in marker order; none means the marker is absent.
func tokenize(name, version string) []filenameTokens {
	marker := version + "_"
	var out []filenameTokens
	for from := 0; ; {
		i := strings.Index(name[from:], marker)
		if i < 0 {
			return out
		}
		start := from + i + len(marker)
		out = append(out, tokenizeGroups(name[start:]))
		from = start
	}
}

func tokenizeGroups(rest string) filenameTokens {
	var t filenameTokens
	for {
		j := strings.IndexByte(rest, '_')
		if j <= 0 || !isDigits(rest[:j]) {
			break
		}
		v, err := strconv.ParseInt(rest[:j], 10, 64)
		if err != nil {
			break
		}
		t.groups = append(t.groups, v)
		rest = rest[j+1:]
	}
	t.suffix = rest
	return t
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// ExtractAdminCode parses the admin code of a file at the given admin level.
// Only the base name is inspected. The level is trusted as given: a file whose
// digit groups do not match it fails with ErrParse.
func ExtractAdminCode(filename string, level int, version string) (AdminCode, error) {
	if err := ValidateLevel(level); err != nil {
		return AdminCode{}, err
	}
	if err := ValidateVersion(version); err != nil {
		return AdminCode{}, err
	}

	name := filepath.Base(filename)
	candidates := tokenize(name, version)
	if len(candidates) == 0 {
		return AdminCode{}, fmt.Errorf("%w: %s: missing %q marker", ErrParse, name, version)
	}

	// The directory pattern matches at any marker, so the first marker with
	// the right number of groups wins.
	want := DigitGroups(level)
	for _, tokens := range candidates {
		if len(tokens.groups) == want {
			return adminCodeFromGroups(tokens.groups), nil
		}
	}
	return AdminCode{}, fmt.Errorf("%w: %s: admin level %d expects %d digit groups after %q, found %d",
		ErrParse, name, level, want, version, len(candidates[0].groups))
}

// adminCodeFromGroups assigns all but the last group to slots from level 0;
// the last group is the code version. No groups means a country-level file.
func adminCodeFromGroups(groups []int64) AdminCode {
	if len(groups) == 0 {
		return CountryAdminCode()
	}

	last := len(groups) - 1
	code := AdminCode{CodeVersion: strconv.FormatInt(groups[last], 10)}
	for i, g := range groups[:last] {
		code.Units[i] = Some(g)
	}
	return code
}
