package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/couchcryptid/clim2parquet/internal/domain"
)

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseLevels parses a comma-separated list of admin levels. Range checks are
// left to the converter so the message is the same for every caller.
func parseLevels(s string) ([]int, error) {
	parts := splitList(s)
	levels := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: admin level %q is not an integer", domain.ErrInvalidParameter, p)
		}
		levels = append(levels, n)
	}
	return levels, nil
}

var versionUsage = "GADM naming convention version (" + strings.Join(domain.GADMVersions(), ", ") + ")"
