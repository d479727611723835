package types

import (
	"errors"
	"maps"
	"strings"
)

// ExtractorDefinition is the declarative configuration of a single extractor
//
// The definition is owned by the host: it is loaded from a definition file, mutated by the
// extractor when a run completes (LastExecution) and persisted back through the extractor registry.
type ExtractorDefinition struct {
	// unique name of the extractor
	Name string `json:"name" yaml:"name"`
	// name of the data source the extracted records are written to
	DataSource string `json:"dataSource" yaml:"dataSource"`
	// local path (relative to the application root) or absolute URL of the file to extract
	FileLocation string `json:"fileLocation,omitempty" yaml:"fileLocation,omitempty"`
	// is the file an archive
	Zipped bool `json:"zipped" yaml:"-"`
	// path of the data file inside the archive - required if Zipped is set
	ZipPath string `json:"zipPath,omitempty" yaml:"zipPath,omitempty"`
	// time of the last successful run, formatted with constants.TimestampLayout
	LastExecution string `json:"lastExecution,omitempty" yaml:"lastExecution,omitempty"`
	// the store type used to parse the file (csv, jsonl, log)
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	// store specific options
	Options map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}

func (d *ExtractorDefinition) Validate() error {
	if d.Name == "" {
		return errors.New("extractor name is required")
	}
	if d.DataSource == "" {
		return errors.New("extractor data_source is required")
	}
	return nil
}

// Clone returns a deep copy of the definition
func (d *ExtractorDefinition) Clone() *ExtractorDefinition {
	if d == nil {
		return nil
	}
	res := *d
	if d.Options != nil {
		res.Options = maps.Clone(d.Options)
	}
	return &res
}

// Option returns the named store option, or the default if it is not set
func (d *ExtractorDefinition) Option(name, defaultValue string) string {
	if v, ok := d.Options[name]; ok {
		return v
	}
	return defaultValue
}

// ParseFlag parses a boolean flag stored as a string
// only a case-insensitive "true" is true, anything else (including an empty string) is false
func ParseFlag(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}
