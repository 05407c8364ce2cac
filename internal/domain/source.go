package domain

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// DataSource describes one climate product and how its files are named.
type DataSource struct {
	Name       string `yaml:"data_source"`
	Version    string `yaml:"data_version"`
	Regex      string `yaml:"data_regex"`
	OutputName string `yaml:"data_output_name"`
}

//go:embed sources.yaml
var sourcesYAML []byte

var dataSources = sync.OnceValue(func() []DataSource {
	var sources []DataSource
	if err := yaml.Unmarshal(sourcesYAML, &sources); err != nil {
		panic(fmt.Sprintf("parse embedded sources.yaml: %v", err))
	}
	return sources
})

// DataSources returns the catalog of supported climate data sources.
func DataSources() []DataSource {
	return slices.Clone(dataSources())
}

// DataNames returns the names of the supported data sources in catalog order.
func DataNames() []string {
	sources := dataSources()
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name
	}
	return names
}

// LookupSource returns the catalog entry for name.
func LookupSource(name string) (DataSource, error) {
	for _, s := range dataSources() {
		if s.Name == name {
			return s, nil
		}
	}
	return DataSource{}, fmt.Errorf("%w: data source %q not available, see DataNames", ErrInvalidParameter, name)
}

// OutputName returns the Parquet file name for a data source at an admin
// level, without a directory.
func OutputName(src DataSource, level int) string {
	return fmt.Sprintf("%s_admin_%d.parquet", src.OutputName, level)
}
