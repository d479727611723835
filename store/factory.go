package store

import (
	"fmt"
	"strings"

	"github.com/turbot/tailpipe-extractor/data_source"
	"golang.org/x/exp/maps"
)

type StoreCtor func(ds data_source.DataSource, opts map[string]string) (Store, error)

// Factory is the global StoreFactory instance
var Factory = newStoreFactory()

func init() {
	Factory.RegisterStore(CsvStoreIdentifier, NewCsvStore)
	Factory.RegisterStore(JsonlStoreIdentifier, NewJsonlStore)
	Factory.RegisterStore(AccessLogStoreIdentifier, NewAccessLogStore)
}

type StoreFactory struct {
	stores map[string]StoreCtor
}

func newStoreFactory() *StoreFactory {
	return &StoreFactory{
		stores: make(map[string]StoreCtor),
	}
}

func (f *StoreFactory) RegisterStore(storeType string, ctor StoreCtor) {
	f.stores[strings.ToLower(storeType)] = ctor
}

func (f *StoreFactory) Supports(storeType string) bool {
	_, ok := f.stores[strings.ToLower(storeType)]
	return ok
}

func (f *StoreFactory) Types() []string {
	return maps.Keys(f.stores)
}

// GetStore creates the store for the type, writing to the given data source
func (f *StoreFactory) GetStore(storeType string, opts map[string]string, ds data_source.DataSource) (Store, error) {
	ctor, ok := f.stores[strings.ToLower(storeType)]
	if !ok {
		return nil, fmt.Errorf("unsupported store type '%s'", storeType)
	}
	return ctor(ds, opts)
}
