package domain

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

//go:embed countries.txt
var countriesTxt string

// knownCountries parses the embedded code list once.
var knownCountries = sync.OnceValue(func() map[string]struct{} {
	set := make(map[string]struct{}, 256)
	for _, line := range strings.Split(countriesTxt, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, code := range strings.Fields(line) {
			set[code] = struct{}{}
		}
	}
	return set
})

// KnownCountry reports whether code is in the known-codes list.
func KnownCountry(code string) bool {
	_, ok := knownCountries()[code]
	return ok
}

// countryPatterns holds one compiled pattern per supported version.
var countryPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(gadmVersions))
	for _, v := range gadmVersions {
		m[v] = regexp.MustCompile(`(?:^|[^A-Za-z])([A-Z]{3})_` + regexp.QuoteMeta(v))
	}
	return m
}()

// CountryCode returns the three-letter country code immediately preceding
// "_<version>" in the base name of filename, e.g. "BGD" in
// "BGD_v410_CHIRPS.csv".
func CountryCode(filename, version string) (string, error) {
	re, ok := countryPatterns[version]
	if !ok {
		return "", ValidateVersion(version)
	}

	name := filepath.Base(filename)
	m := re.FindStringSubmatch(name)
	if m == nil {
		return "", fmt.Errorf("%w: country code not found in filename %s", ErrParse, name)
	}
	if !KnownCountry(m[1]) {
		return "", fmt.Errorf("%w: country code of %s not recognised: %q", ErrUnrecognizedCountry, name, m[1])
	}
	return m[1], nil
}
