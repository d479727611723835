package data_source

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/exp/maps"
)

// ConfigRegistry resolves data sources from their config
// data sources are opened on first use
type ConfigRegistry struct {
	configs map[string]*Config

	dataSources map[string]DataSource
	lock        sync.RWMutex
}

func NewRegistry(configs ...*Config) (*ConfigRegistry, error) {
	r := &ConfigRegistry{
		configs:     make(map[string]*Config),
		dataSources: make(map[string]DataSource),
	}
	for _, c := range configs {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, ok := r.configs[c.Name]; ok {
			return nil, fmt.Errorf("duplicate data source '%s'", c.Name)
		}
		r.configs[c.Name] = c
	}
	return r, nil
}

// Register adds an open data source to the registry
func (r *ConfigRegistry) Register(ds DataSource) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.dataSources[ds.Name()] = ds
}

// Resolve returns the data source with the given name, opening it if needed
// false is returned if the name is unknown or the data source could not be opened
func (r *ConfigRegistry) Resolve(name string) (DataSource, bool) {
	r.lock.RLock()
	ds, ok := r.dataSources[name]
	r.lock.RUnlock()
	if ok {
		return ds, true
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	// check again in case another goroutine opened it
	if ds, ok := r.dataSources[name]; ok {
		return ds, true
	}

	cfg, ok := r.configs[name]
	if !ok {
		return nil, false
	}
	ds, err := Factory.GetDataSource(cfg)
	if err != nil {
		slog.Error("Failed to open data source", "data_source", name, "error", err)
		return nil, false
	}
	r.dataSources[name] = ds
	return ds, true
}

func (r *ConfigRegistry) Names() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	names := maps.Keys(r.configs)
	for name := range r.dataSources {
		if _, ok := r.configs[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Close closes every opened data source
func (r *ConfigRegistry) Close() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	var errs []error
	for name, ds := range r.dataSources {
		if err := ds.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing data source %s: %w", name, err))
		}
	}
	r.dataSources = make(map[string]DataSource)
	return errors.Join(errs...)
}
