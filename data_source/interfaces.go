package data_source

import (
	"context"

	"github.com/turbot/tailpipe-extractor/types"
)

// DataSource is a named sink which extracted records are written to
// Data sources provided: [SqliteDataSource], [JsonlDataSource]
type DataSource interface {
	Identifier() string
	Name() string
	// Insert writes a batch of records
	Insert(ctx context.Context, records []types.Record) error
	Close() error
}

// Registry resolves data sources by name
type Registry interface {
	Resolve(name string) (DataSource, bool)
}
