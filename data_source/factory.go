package data_source

import (
	"fmt"
	"strings"
)

// Factory is the global DataSourceFactory instance
var Factory = newDataSourceFactory()

func init() {
	Factory.Register(SqliteDataSourceIdentifier, NewSqliteDataSource)
	Factory.Register(JsonlDataSourceIdentifier, NewJsonlDataSource)
}

type DataSourceFactory struct {
	ctors map[string]func(*Config) (DataSource, error)
}

func newDataSourceFactory() *DataSourceFactory {
	return &DataSourceFactory{
		ctors: make(map[string]func(*Config) (DataSource, error)),
	}
}

func (f *DataSourceFactory) Register(identifier string, ctor func(*Config) (DataSource, error)) {
	f.ctors[strings.ToLower(identifier)] = ctor
}

func (f *DataSourceFactory) Supports(identifier string) bool {
	_, ok := f.ctors[strings.ToLower(identifier)]
	return ok
}

func (f *DataSourceFactory) GetDataSource(cfg *Config) (DataSource, error) {
	ctor, ok := f.ctors[cfg.GetType()]
	if !ok {
		return nil, fmt.Errorf("data source '%s': unsupported type '%s'", cfg.Name, cfg.Type)
	}
	return ctor(cfg)
}
