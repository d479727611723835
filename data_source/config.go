package data_source

import (
	"fmt"
	"strings"
)

// Config is a `data_source "<name>" {}` block
type Config struct {
	Name string `hcl:"name,label" yaml:"name"`
	Type string `hcl:"type" yaml:"type"`
	// the database file for sqlite, the output directory for jsonl
	Path string `hcl:"path" yaml:"path"`
	// sqlite only - defaults to the data source name
	Table *string `hcl:"table,optional" yaml:"table"`
}

func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("data source name is required")
	}
	if c.Path == "" {
		return fmt.Errorf("data source '%s': path is required", c.Name)
	}
	if !Factory.Supports(c.Type) {
		return fmt.Errorf("data source '%s': unsupported type '%s'", c.Name, c.Type)
	}
	return nil
}

func (c *Config) GetTable() string {
	if c.Table != nil && *c.Table != "" {
		return *c.Table
	}
	return ColumnName(c.Name)
}

func (c *Config) GetType() string {
	return strings.ToLower(c.Type)
}
