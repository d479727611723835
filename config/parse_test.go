package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turbot/tailpipe-extractor/types"
)

const hclConfig = `
app_root        = env("TEST_EXTRACTOR_APP_ROOT")
state_path      = "/var/lib/extractor/state.json"
max_concurrency = 2

fetch {
  connect_timeout = 1000
  read_timeout    = 2000

  aws {
    default_region = "eu-west-1"
  }
}

metadata_registry {
  path = "/var/lib/extractor/metadata.db"
}

data_source "warehouse" {
  type = "sqlite"
  path = "/var/lib/extractor/warehouse.db"
}

extractor "orders" {
  data_source   = "warehouse"
  file_location = "https://example.com/orders.zip"
  zipped        = "TRUE"
  zip_path      = "orders.csv"
  options = {
    delimiter = ";"
  }
}

extractor "events" {
  data_source   = "warehouse"
  file_location = "events.jsonl"
  zipped        = true
  type          = "jsonl"
}

extractor "empty" {
  data_source = "warehouse"
  zipped      = "yes"
}
`

const yamlConfig = `
appRoot: /data
fetch:
  connectTimeout: 1000
  readTimeout: 2000
dataSources:
  - name: warehouse
    type: sqlite
    path: /var/lib/extractor/warehouse.db
extractors:
  - name: orders
    dataSource: warehouse
    fileLocation: https://example.com/orders.zip
    zipped: "true"
    zipPath: orders.csv
    options:
      delimiter: ";"
  - name: events
    dataSource: warehouse
    fileLocation: events.jsonl
    zipped: true
    type: jsonl
  - name: empty
    dataSource: warehouse
    zipped: "yes"
`

var wantDefinitions = []*types.ExtractorDefinition{
	{
		Name:         "orders",
		DataSource:   "warehouse",
		FileLocation: "https://example.com/orders.zip",
		Zipped:       true,
		ZipPath:      "orders.csv",
		Type:         "csv",
		Options:      map[string]string{"delimiter": ";"},
	},
	{
		Name:         "events",
		DataSource:   "warehouse",
		FileLocation: "events.jsonl",
		Zipped:       true,
		Type:         "jsonl",
	},
	{
		Name:       "empty",
		DataSource: "warehouse",
		Type:       "csv",
	},
}

func TestParseHcl(t *testing.T) {
	t.Setenv("TEST_EXTRACTOR_APP_ROOT", "/srv/app")

	cfg, err := ParseHcl([]byte(hclConfig), "test.hcl")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/srv/app", cfg.GetAppRoot())
	assert.Equal(t, 2, cfg.GetMaxConcurrency())
	statePath, err := cfg.GetStatePath()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/extractor/state.json", statePath)

	assert.Equal(t, time.Second, cfg.Fetch.GetConnectTimeout())
	assert.Equal(t, 2*time.Second, cfg.Fetch.GetReadTimeout())
	require.NotNil(t, cfg.Fetch.Aws)
	assert.Equal(t, "eu-west-1", *cfg.Fetch.Aws.DefaultRegion)
	require.NotNil(t, cfg.MetadataRegistry)
	assert.Equal(t, "/var/lib/extractor/metadata.db", cfg.MetadataRegistry.Path)

	require.Len(t, cfg.DataSources, 1)
	assert.Equal(t, "warehouse", cfg.DataSources[0].Name)
	assert.Equal(t, "warehouse", cfg.DataSources[0].GetTable())

	if diff := cmp.Diff(wantDefinitions, cfg.ExtractorDefinitions()); diff != "" {
		t.Errorf("definitions mismatch (-want +got):\n%s", diff)
	}
}

func TestParseYaml(t *testing.T) {
	cfg, err := ParseYaml([]byte(yamlConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/data", cfg.GetAppRoot())
	assert.Equal(t, time.Second, cfg.Fetch.GetConnectTimeout())
	if diff := cmp.Diff(wantDefinitions, cfg.ExtractorDefinitions()); diff != "" {
		t.Errorf("definitions mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		hcl  string
	}{
		{name: "syntax", hcl: `extractor "a" {`},
		{name: "missing data source", hcl: `extractor "a" { file_location = "x" }`},
		{name: "unknown attribute", hcl: `colour = "red"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHcl([]byte(tt.hcl), "test.hcl")
			assert.Error(t, err)
		})
	}

	_, err := ParseYaml([]byte("colour: red\n"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		hcl  string
	}{
		{
			name: "duplicate extractor",
			hcl: `
extractor "a" { data_source = "x" }
extractor "a" { data_source = "y" }`,
		},
		{
			name: "duplicate data source",
			hcl: `
data_source "x" {
  type = "sqlite"
  path = "a.db"
}
data_source "x" {
  type = "jsonl"
  path = "out"
}`,
		},
		{
			name: "unsupported data source type",
			hcl: `
data_source "x" {
  type = "parquet"
  path = "a"
}`,
		},
		{name: "empty data source", hcl: `extractor "a" { data_source = "" }`},
		{name: "bad concurrency", hcl: `max_concurrency = 0`},
		{name: "bad fetch", hcl: "fetch {\n  read_timeout = -1\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseHcl([]byte(tt.hcl), "test.hcl")
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	hclPath := filepath.Join(dir, "extractors.hcl")
	require.NoError(t, os.WriteFile(hclPath, []byte(hclConfig), 0644))
	yamlPath := filepath.Join(dir, "extractors.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlConfig), 0644))
	jsonPath := filepath.Join(dir, "extractors.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte("{}"), 0644))

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "hcl", path: hclPath},
		{name: "yaml", path: yamlPath},
		{name: "unsupported extension", path: jsonPath, wantErr: true},
		{name: "missing", path: filepath.Join(dir, "missing.hcl"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, cfg.Extractors, 3)
		})
	}
}
