// Command genmock writes a synthetic corpus of GADM-named climate CSV files
// for exercising the converter end to end. Values are drawn from a seeded
// generator so the same flags always produce the same files.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -country BGD -units 3 -days 31
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/clim2parquet/internal/domain"
)

var baseDate = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// unit is one generated admin unit: its codes per level and code version.
type unit struct {
	codes       []int
	codeVersion int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "directory to write CSV files into")
	country := flag.String("country", "BGD", "ISO alpha-3 country code used in file names")
	units := flag.Int("units", 3, "admin units per level below the country")
	days := flag.Int("days", 31, "daily rows per file")
	version := flag.String("version", domain.GADMVersion410, "GADM naming convention version")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *out == "" || *units <= 0 || *days <= 0 {
		flag.Usage()
		return fmt.Errorf("missing or invalid flags: -out, -units, -days")
	}
	if !domain.KnownCountry(*country) {
		return fmt.Errorf("unknown country code %q", *country)
	}
	if err := domain.ValidateVersion(*version); err != nil {
		return err
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(*seed, *seed))
	var files, rows int
	for _, src := range domain.DataSources() {
		for level, us := range hierarchy(*units) {
			for _, u := range us {
				name, err := fileName(*country, *version, src, level, u)
				if err != nil {
					return err
				}
				if err := writeCSV(filepath.Join(*out, name), src, *days, rng); err != nil {
					return fmt.Errorf("writing %s: %w", name, err)
				}
				files++
				rows += *days
			}
		}
	}

	log.Printf("wrote %d files, %d rows to %s", files, rows, *out)
	printStats(*units)
	return nil
}

// hierarchy returns the admin units per level: the country, n regions and n
// districts in each region. Level 3 is left empty so converters see a
// no-files warning.
func hierarchy(n int) [][]unit {
	levels := make([][]unit, domain.MaxLevels)
	levels[0] = []unit{{}}
	for r := 1; r <= n; r++ {
		levels[1] = append(levels[1], unit{codes: []int{r}, codeVersion: 1})
		for d := 1; d <= n; d++ {
			levels[2] = append(levels[2], unit{codes: []int{r, d}, codeVersion: 1})
		}
	}
	return levels
}

// fileName builds "<CTRY>_<version>_<codes>_<codeVersion>_<source>.csv" and
// checks it against the pattern the converter will use.
func fileName(country, version string, src domain.DataSource, level int, u unit) (string, error) {
	var b strings.Builder
	b.WriteString(country + "_" + version + "_")
	if level > 0 {
		for _, c := range u.codes {
			b.WriteString(strconv.Itoa(c) + "_")
		}
		b.WriteString(strconv.Itoa(u.codeVersion) + "_")
	}
	b.WriteString(sourceFragment(src))
	b.WriteString(".csv")
	name := b.String()

	re, err := domain.FilePattern(level, version, src)
	if err != nil {
		return "", err
	}
	if !re.MatchString(name) {
		return "", fmt.Errorf("generated name %s does not match %s at admin level %d", name, src.Name, level)
	}
	return name, nil
}

// sourceFragment turns a catalog regex into a literal file name part.
func sourceFragment(src domain.DataSource) string {
	year := strconv.Itoa(baseDate.Year())
	if strings.Contains(src.Regex, `\d{4}`) {
		return strings.ReplaceAll(src.Regex, `\d{4}`, year)
	}
	return src.Regex + "_" + year
}

func writeCSV(path string, src domain.DataSource, days int, rng *rand.Rand) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", src.OutputName}); err != nil {
		return err
	}
	for d := range days {
		date := baseDate.AddDate(0, 0, d).Format(time.DateOnly)
		value := ""
		// Roughly one in twenty cells is missing.
		if rng.IntN(20) != 0 {
			value = strconv.FormatFloat(sample(src, rng), 'f', 3, 64)
		}
		if err := w.Write([]string{date, value}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func sample(src domain.DataSource, rng *rand.Rand) float64 {
	switch {
	case strings.HasPrefix(src.Name, "ERA5_RH"):
		return 40 + rng.Float64()*60
	case strings.HasPrefix(src.Name, "ERA5_SH"):
		return 0.005 + rng.Float64()*0.015
	case strings.HasPrefix(src.Name, "ERA5"):
		return 288 + rng.NormFloat64()*5
	default:
		return rng.ExpFloat64() * 4
	}
}

func printStats(n int) {
	fmt.Println("\n=== Expected reference table ===")
	fmt.Printf("Entries: %d (1 country, %d regions, %d districts)\n", 1+n+n*n, n, n*n)
	fmt.Printf("Outputs per source: %d (admin levels 0-2)\n", 3)
	fmt.Printf("Skipped per source: admin level 3\n")
}
