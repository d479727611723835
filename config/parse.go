package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/turbot/go-kit/helpers"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"gopkg.in/yaml.v3"
)

// Load reads the config file at path
// .hcl files are parsed as HCL, .yaml and .yml files as YAML
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".hcl":
		cfg, err = ParseHcl(data, path)
	case ".yaml", ".yml":
		cfg, err = ParseYaml(data)
	default:
		return nil, fmt.Errorf("unsupported config file extension '%s'", ext)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	slog.Debug("Loaded config", "path", path, "data_sources", len(cfg.DataSources), "extractors", len(cfg.Extractors))
	return cfg, nil
}

// ParseHcl decodes HCL config
// expressions may call env("NAME") to read an environment variable
func ParseHcl(data []byte, filename string) (cfg *Config, err error) {
	file, diags := hclsyntax.ParseConfig(data, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, diagsToError("failed to parse config", diags)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to decode config: %w", helpers.ToError(r))
		}
	}()

	cfg = &Config{}
	moreDiags := gohcl.DecodeBody(file.Body, evalContext(), cfg)
	diags = append(diags, moreDiags...)
	if diags.HasErrors() {
		return nil, diagsToError("failed to decode config", diags)
	}
	return cfg, nil
}

// ParseYaml decodes YAML config, rejecting unknown keys
func ParseYaml(data []byte) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: make(map[string]cty.Value),
		Functions: map[string]function.Function{
			"env": envFunc,
		},
	}
}

// envFunc returns the value of an environment variable, or "" if it is not set
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return cty.StringVal(os.Getenv(args[0].AsString())), nil
	},
})

func diagsToError(prefix string, diags hcl.Diagnostics) error {
	var msgs []string
	for _, err := range diags.Errs() {
		msgs = append(msgs, err.Error())
	}
	return fmt.Errorf("%s: %s", prefix, strings.Join(msgs, "; "))
}
