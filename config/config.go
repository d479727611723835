package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	typehelpers "github.com/turbot/go-kit/types"
	"github.com/turbot/tailpipe-extractor/artifact_source"
	"github.com/turbot/tailpipe-extractor/constants"
	"github.com/turbot/tailpipe-extractor/data_source"
	"github.com/turbot/tailpipe-extractor/types"
)

// Config is the contents of an extractor config file
type Config struct {
	// directory which relative local file locations are resolved against
	AppRoot *string `hcl:"app_root,optional" yaml:"appRoot"`
	// directory staging workspaces are created in - defaults to the system temp dir
	WorkspaceDir *string `hcl:"workspace_dir,optional" yaml:"workspaceDir"`
	// path of the extractor state file
	StatePath *string `hcl:"state_path,optional" yaml:"statePath"`
	// number of extractors run at once
	MaxConcurrency *int `hcl:"max_concurrency,optional" yaml:"maxConcurrency"`

	Fetch            *artifact_source.FetchConfig `hcl:"fetch,block" yaml:"fetch"`
	MetadataRegistry *MetadataRegistryConfig      `hcl:"metadata_registry,block" yaml:"metadataRegistry"`
	DataSources      []*data_source.Config        `hcl:"data_source,block" yaml:"dataSources"`
	Extractors       []*ExtractorConfig           `hcl:"extractor,block" yaml:"extractors"`
}

// MetadataRegistryConfig is the `metadata_registry` block
type MetadataRegistryConfig struct {
	// path of the SQLite database
	Path string `hcl:"path" yaml:"path"`
}

// ExtractorConfig is an `extractor "<name>" {}` block
type ExtractorConfig struct {
	Name         string  `hcl:"name,label" yaml:"name"`
	DataSource   string  `hcl:"data_source" yaml:"dataSource"`
	FileLocation *string `hcl:"file_location,optional" yaml:"fileLocation"`
	// "true" or "false" - any other value is false
	Zipped        *string           `hcl:"zipped,optional" yaml:"zipped"`
	ZipPath       *string           `hcl:"zip_path,optional" yaml:"zipPath"`
	LastExecution *string           `hcl:"last_execution,optional" yaml:"lastExecution"`
	Type          *string           `hcl:"type,optional" yaml:"type"`
	Options       map[string]string `hcl:"options,optional" yaml:"options"`
}

// Definition converts the block to an extractor definition
func (e *ExtractorConfig) Definition() *types.ExtractorDefinition {
	def := &types.ExtractorDefinition{
		Name:          e.Name,
		DataSource:    e.DataSource,
		FileLocation:  typehelpers.SafeString(e.FileLocation),
		Zipped:        types.ParseFlag(typehelpers.SafeString(e.Zipped)),
		ZipPath:       typehelpers.SafeString(e.ZipPath),
		LastExecution: typehelpers.SafeString(e.LastExecution),
		Type:          typehelpers.SafeString(e.Type),
	}
	if len(e.Options) > 0 {
		def.Options = make(map[string]string, len(e.Options))
		for k, v := range e.Options {
			def.Options[k] = v
		}
	}
	if def.Type == "" {
		def.Type = DefaultStoreType
	}
	return def
}

// DefaultStoreType is used by extractors which do not set a type
const DefaultStoreType = "csv"

func (c *Config) Validate() error {
	if err := c.Fetch.Validate(); err != nil {
		return err
	}
	if c.MaxConcurrency != nil && *c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be greater than or equal to 1")
	}
	if c.MetadataRegistry != nil && c.MetadataRegistry.Path == "" {
		return fmt.Errorf("metadata_registry path is required")
	}

	dataSources := make(map[string]struct{})
	for _, ds := range c.DataSources {
		if err := ds.Validate(); err != nil {
			return err
		}
		if _, ok := dataSources[ds.Name]; ok {
			return fmt.Errorf("duplicate data source '%s'", ds.Name)
		}
		dataSources[ds.Name] = struct{}{}
	}

	extractors := make(map[string]struct{})
	for _, e := range c.Extractors {
		if err := e.Definition().Validate(); err != nil {
			return fmt.Errorf("extractor '%s': %w", e.Name, err)
		}
		if _, ok := extractors[e.Name]; ok {
			return fmt.Errorf("duplicate extractor '%s'", e.Name)
		}
		extractors[e.Name] = struct{}{}
	}
	return nil
}

// ExtractorDefinitions returns the definitions of all configured extractors
func (c *Config) ExtractorDefinitions() []*types.ExtractorDefinition {
	res := make([]*types.ExtractorDefinition, len(c.Extractors))
	for i, e := range c.Extractors {
		res[i] = e.Definition()
	}
	return res
}

// GetAppRoot returns the configured app root, falling back to the TAILPIPE_EXTRACTOR_APP_ROOT env var
func (c *Config) GetAppRoot() string {
	if c.AppRoot != nil {
		return *c.AppRoot
	}
	return os.Getenv(constants.EnvAppRoot)
}

func (c *Config) GetWorkspaceDir() (string, error) {
	if c.WorkspaceDir == nil {
		return "", nil
	}
	return homedir.Expand(*c.WorkspaceDir)
}

func (c *Config) GetStatePath() (string, error) {
	if c.StatePath != nil {
		return homedir.Expand(*c.StatePath)
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, "."+constants.ProcessName, "extractors.json"), nil
}

func (c *Config) GetMaxConcurrency() int {
	if c.MaxConcurrency == nil {
		return constants.DefaultMaxConcurrentExtractors
	}
	return *c.MaxConcurrency
}
